// Package taxonomy maps partner names onto pods and priority tiers for
// the grouped sections of the daily report.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
)

// Entry is one partner's classification.
type Entry struct {
	Pod      string `json:"pod"`
	Priority string `json:"priority"`
}

// Book is a loaded partner taxonomy. Partners not present classify as
// Other/P2 so a new partner never breaks the report.
type Book struct {
	Partners      map[string]Entry `json:"partners"`
	PodOrder      []string         `json:"pod_order"`
	PriorityOrder []string         `json:"priority_order"`
}

const (
	DefaultPod      = "Other"
	DefaultPriority = "P2"
)

// Load reads a taxonomy file. A missing file yields an empty book, so
// installs without a taxonomy still produce an ungrouped report.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("No taxonomy file, partners will classify as Other")
		return &Book{Partners: map[string]Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}

	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy %s: %w", path, err)
	}
	if book.Partners == nil {
		book.Partners = map[string]Entry{}
	}
	log.Info().Int("partners", len(book.Partners)).Msg("Loaded partner taxonomy")
	return &book, nil
}

// Classify returns the pod and priority for a partner.
func (b *Book) Classify(partner string) Entry {
	if e, ok := b.Partners[partner]; ok {
		if e.Pod == "" {
			e.Pod = DefaultPod
		}
		if e.Priority == "" {
			e.Priority = DefaultPriority
		}
		return e
	}
	return Entry{Pod: DefaultPod, Priority: DefaultPriority}
}

// Pods returns the configured pod display order with any unlisted pods
// appended, so grouping stays stable as the taxonomy grows.
func (b *Book) Pods() []string {
	seen := make(map[string]bool, len(b.PodOrder))
	pods := make([]string, 0, len(b.PodOrder))
	for _, p := range b.PodOrder {
		pods = append(pods, p)
		seen[p] = true
	}
	var extra []string
	for _, e := range b.Partners {
		pod := e.Pod
		if pod == "" {
			pod = DefaultPod
		}
		if !seen[pod] {
			extra = append(extra, pod)
			seen[pod] = true
		}
	}
	sort.Strings(extra)
	pods = append(pods, extra...)
	if !seen[DefaultPod] {
		pods = append(pods, DefaultPod)
	}
	return pods
}
