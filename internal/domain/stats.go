package domain

import "time"

// TaskStats holds aggregate counts over a set of tasks.
type TaskStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// ComputeStats counts tasks by status and counts overdue tasks relative to now.
func ComputeStats(tasks []*Task, now time.Time) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusOpen:
			stats.Open++
		case StatusProgress:
			stats.InProgress++
		case StatusCompleted:
			stats.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}
