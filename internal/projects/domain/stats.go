package domain

import (
	"math"
	"sort"
	"time"
)

type Stats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	Progress       int `json:"progress"`
	DaysRemaining  int `json:"days_remaining"`
}

// ComputeStats derives progress (percent of completed tasks, rounded) and
// whole days left until end, never negative.
func ComputeStats(total, completed int, end, now time.Time) Stats {
	s := Stats{TotalTasks: total, CompletedTasks: completed}
	if total > 0 {
		s.Progress = int(math.Round(float64(completed) / float64(total) * 100))
	}
	if left := end.Sub(now); left > 0 {
		s.DaysRemaining = int(math.Ceil(left.Hours() / 24))
	}
	return s
}

// MergeDashboard unions owned and member projects, dropping duplicates, most
// recently updated first.
func MergeDashboard(owned, member []Project) []Project {
	out := make([]Project, 0, len(owned)+len(member))
	seen := make(map[string]bool, len(owned)+len(member))
	for _, list := range [][]Project{owned, member} {
		for _, p := range list {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
