package portal

// Stats are headline counts. They are always computed over the full project
// set so they stay stable while the list is filtered.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Other     int `json:"other"`
}

// ComputeStats counts entries per canonical status.
func ComputeStats(entries []Entry) Stats {
	stats := Stats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusActive:
			stats.Active++
		case StatusCompleted:
			stats.Completed++
		case StatusPending:
			stats.Pending++
		default:
			stats.Other++
		}
	}
	return stats
}
