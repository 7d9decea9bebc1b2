package dataprocessing

import (
	"sort"

	"strikecharts/pkg/contracts/domain"
)

// Aggregate collapses observations into one entry per distinct category.
// Entries come out in first-seen order; use SortByCategory for chart order.
func Aggregate(observations []domain.Observation) domain.ReportTable {
	slots := make(map[string]int, len(observations))
	table := make(domain.ReportTable, 0)

	for _, o := range observations {
		key := o.Value.Key()
		if i, ok := slots[key]; ok {
			table[i].Count++
			continue
		}
		slots[key] = len(table)
		table = append(table, domain.FrequencyEntry{Category: o.Value, Count: 1})
	}
	return table
}

// SortByCategory returns a copy of t ordered by category ascending
func SortByCategory(t domain.ReportTable) domain.ReportTable {
	sorted := t.Clone()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Category.Less(sorted[j].Category)
	})
	return sorted
}
