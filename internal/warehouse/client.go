package warehouse

import (
	"context"
	"time"
)

// Event is one partner action row from the growth events feed. The feed
// reports one row per action with flags marking which funnel stage it
// belongs to.
type Event struct {
	ActionDate time.Time
	Partner    string
	Adds       int
	Leads      int
}

// Client is the interface for fetching growth events from the warehouse.
type Client interface {
	// FetchEvents returns all partner events with an action date in
	// [from, to], inclusive.
	FetchEvents(ctx context.Context, from, to time.Time) ([]Event, error)
}

// Config holds connection settings for the warehouse SQL API.
type Config struct {
	AccountURL string // e.g. https://acme-warehouse.snowflakecomputing.com
	Token      string
	Warehouse  string
	Database   string
	Schema     string
	Role       string

	// Performance Settings
	RequestDelay time.Duration
}

// NewClient creates a warehouse client for the provided configuration.
func NewClient(cfg Config) Client {
	return newSQLAPIClient(cfg)
}
