package workflow

import (
	"context"
	"math"
	"sort"
)

// Stats aggregates counts and completion durations over the whole instance
// store.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	// AverageDurationMinutes is the mean of completion time minus start time
	// over completed instances, zero when none have completed.
	AverageDurationMinutes int          `json:"average_duration_minutes"`
	ByType                 map[Type]int `json:"by_type"`
}

// StateDuration reports how long instances take to leave a state.
type StateDuration struct {
	Type                   Type    `json:"type"`
	State                  State   `json:"state"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	Count                  int     `json:"count"`
}

// BottleneckReport combines the slowest-transitioning states with the
// current distribution of active instances.
type BottleneckReport struct {
	SlowestStates []StateDuration `json:"slowest_states"`
	// StateDistribution counts active instances per "type:state" key.
	StateDistribution map[string]int `json:"state_distribution"`
}

// Stats scans the store and aggregates workflow counts. Total always equals
// Active plus Completed.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	items, err := e.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{ByType: make(map[Type]int)}
	var totalMinutes float64
	for _, in := range items {
		stats.Total++
		stats.ByType[in.Type]++
		if in.ActualCompletion == nil {
			stats.Active++
			continue
		}
		stats.Completed++
		totalMinutes += in.ActualCompletion.Sub(in.StartedAt).Minutes()
	}
	if stats.Completed > 0 {
		stats.AverageDurationMinutes = int(math.Round(totalMinutes / float64(stats.Completed)))
	}
	return stats, nil
}

// BottleneckAnalysis groups every transition by (type, fromState) and ranks
// the ten slowest groups by mean duration, alongside where active instances
// currently sit. Both reports are computed on demand with a full scan.
func (e *Engine) BottleneckAnalysis(ctx context.Context) (BottleneckReport, error) {
	items, err := e.store.List(ctx)
	if err != nil {
		return BottleneckReport{}, err
	}

	type group struct {
		typ          Type
		state        State
		totalMinutes int
		count        int
	}
	groups := make(map[string]*group)

	report := BottleneckReport{StateDistribution: make(map[string]int)}
	for _, in := range items {
		if in.Active() {
			report.StateDistribution[string(in.Type)+":"+string(in.CurrentState)]++
		}
		for _, tr := range in.Transitions {
			key := string(in.Type) + ":" + string(tr.From)
			g, ok := groups[key]
			if !ok {
				g = &group{typ: in.Type, state: tr.From}
				groups[key] = g
			}
			g.totalMinutes += tr.DurationMinutes
			g.count++
		}
	}

	slowest := make([]StateDuration, 0, len(groups))
	for _, g := range groups {
		slowest = append(slowest, StateDuration{
			Type:                   g.typ,
			State:                  g.state,
			AverageDurationMinutes: float64(g.totalMinutes) / float64(g.count),
			Count:                  g.count,
		})
	}
	sort.Slice(slowest, func(i, j int) bool {
		if slowest[i].AverageDurationMinutes != slowest[j].AverageDurationMinutes {
			return slowest[i].AverageDurationMinutes > slowest[j].AverageDurationMinutes
		}
		return slowest[i].Count > slowest[j].Count
	})
	if len(slowest) > 10 {
		slowest = slowest[:10]
	}
	report.SlowestStates = slowest

	return report, nil
}
