package router

// Stats recomputes the aggregate routing statistics by folding over the
// history. An empty history yields the zero-value structure with
// initialized maps; no division happens at zero entries.
func (r *Router) Stats() Stats {
	entries := r.history.Snapshot()

	stats := Stats{
		BySource:        make(map[string]int),
		ByRetrievalType: make(map[string]int),
	}

	if len(entries) == 0 {
		return stats
	}

	var totalConfidence float64
	for _, entry := range entries {
		stats.BySource[entry.Datasource.String()]++
		stats.ByRetrievalType[string(entry.RetrievalType)]++
		totalConfidence += entry.Confidence
		if entry.Err != "" {
			stats.ErrorCount++
		}
	}

	total := len(entries)
	stats.TotalQueries = total
	stats.AvgConfidence = totalConfidence / float64(total)
	stats.SuccessRate = float64(total-stats.ErrorCount) / float64(total)
	stats.History = entries

	return stats
}
