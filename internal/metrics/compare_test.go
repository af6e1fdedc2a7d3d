package metrics

import (
	"testing"
	"time"
)

func obs(period time.Time, category string, value float64) Observation {
	return Observation{Period: period, Category: category, Value: value, Series: SeriesActual}
}

func TestCompare_NewEntrantSentinel(t *testing.T) {
	jan := month(2026, time.January)
	dec := month(2025, time.December)

	cmps := Compare(
		[]Observation{obs(jan, "NewPartner", 5)},
		[]Observation{obs(dec, "OldPartner", 3)},
		nil,
	)

	np := cmps["NewPartner"]
	if np.Change != 5 {
		t.Errorf("Expected change 5, got %v", np.Change)
	}
	if np.PctChange != 100 {
		t.Errorf("Expected +100%% sentinel for new entrant, got %v", np.PctChange)
	}

	op := cmps["OldPartner"]
	if op.Change != -3 || op.PctChange != -100 {
		t.Errorf("Expected full decline for vanished partner, got %+v", op)
	}
}

func TestCompare_BothZero(t *testing.T) {
	jan := month(2026, time.January)
	cmps := Compare(
		[]Observation{obs(jan, "Quiet", 0)},
		[]Observation{obs(jan, "Quiet", 0)},
		nil,
	)
	if cmps["Quiet"].PctChange != 0 {
		t.Errorf("Expected 0%% sentinel when both windows are zero, got %v", cmps["Quiet"].PctChange)
	}
}

func TestCompare_PctChange(t *testing.T) {
	jan := month(2026, time.January)
	dec := month(2025, time.December)

	cmps := Compare(
		[]Observation{obs(jan, "GoCo", 14)},
		[]Observation{obs(dec, "GoCo", 5)},
		nil,
	)
	if got := cmps["GoCo"].PctChange; got != 180 {
		t.Errorf("Expected +180%%, got %v", got)
	}
}

func TestCompare_YoYOnlyWithBaseline(t *testing.T) {
	jan26 := month(2026, time.January)
	dec25 := month(2025, time.December)
	jan25 := month(2025, time.January)

	cmps := Compare(
		[]Observation{obs(jan26, "Chase", 13), obs(jan26, "Fresh", 12)},
		[]Observation{obs(dec25, "Chase", 12)},
		[]Observation{obs(jan25, "Chase", 10)},
	)

	chase := cmps["Chase"]
	if chase.YoYPct == nil {
		t.Fatal("Expected YoY percentage with a prior-year baseline")
	}
	if *chase.YoYPct != 30 {
		t.Errorf("Expected +30%% YoY, got %v", *chase.YoYPct)
	}

	if cmps["Fresh"].YoYPct != nil {
		t.Error("Expected absent YoY for category with no prior-year value")
	}
}

func TestCompare_NilPriorYearDisablesYoY(t *testing.T) {
	jan := month(2026, time.January)
	cmps := Compare([]Observation{obs(jan, "Chase", 13)}, nil, nil)
	if cmps["Chase"].YoYPct != nil {
		t.Error("Expected no YoY when no prior-year window is supplied")
	}
}

func TestCompare_AggregatesWithinWindow(t *testing.T) {
	jan := month(2026, time.January)
	cmps := Compare(
		[]Observation{obs(jan, "Vagaro", 8), obs(jan, "Vagaro", 12)},
		nil,
		nil,
	)
	if cmps["Vagaro"].Current != 20 {
		t.Errorf("Expected window sums per category, got %v", cmps["Vagaro"].Current)
	}
}

func TestSelectLeaders(t *testing.T) {
	cmps := map[string]CategoryComparison{
		"GoCo":  {Current: 14, Prior: 5, PctChange: 180},
		"Tiny":  {Current: 2, Prior: 0, PctChange: 100}, // below volume floor
		"Heard": {Current: 3, Prior: 15, PctChange: -80},
		"Fresh": {Current: 12, Prior: 8, PctChange: 50},
	}

	leaders := SelectLeaders(cmps, 5, 3)
	if len(leaders) != 2 {
		t.Fatalf("Expected 2 leaders above the floor, got %d", len(leaders))
	}
	if leaders[0].Category != "GoCo" || leaders[1].Category != "Fresh" {
		t.Errorf("Leader order mismatch: %+v", leaders)
	}
}

func TestSelectLaggards_RequiresPrior(t *testing.T) {
	cmps := map[string]CategoryComparison{
		"Heard": {Current: 3, Prior: 15, PctChange: -80},
		"New":   {Current: 5, Prior: 0, PctChange: 100},
		"BQE":   {Current: 7, Prior: 8, PctChange: -13},
	}

	laggards := SelectLaggards(cmps, 3)
	if len(laggards) != 2 {
		t.Fatalf("Expected new entrants excluded from laggards, got %d", len(laggards))
	}
	if laggards[0].Category != "Heard" {
		t.Errorf("Expected steepest decline first, got %s", laggards[0].Category)
	}
}

func TestSelectTopByVolume_DeterministicTies(t *testing.T) {
	cmps := map[string]CategoryComparison{
		"Beta":  {Current: 10},
		"Alpha": {Current: 10},
		"Gamma": {Current: 20},
	}

	top := SelectTopByVolume(cmps, 3)
	if top[0].Category != "Gamma" || top[1].Category != "Alpha" || top[2].Category != "Beta" {
		t.Errorf("Expected volume order with name tie-break, got %+v", top)
	}
}
