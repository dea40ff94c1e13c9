package core

import "sort"

// PlaceholderColor is shown for a transaction whose category cannot be
// resolved.
const PlaceholderColor = "gray"

// DayGroup is a bucket of transactions sharing a calendar day.
type DayGroup struct {
	Day          string
	Transactions []Transaction
}

// GroupByDay buckets transactions by Transaction.Day. Buckets come out in
// the order their day first occurs in txs; transactions keep their relative
// order inside a bucket.
func GroupByDay(txs []Transaction) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, tx := range txs {
		day := tx.Day()
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// SortDaysDescending orders buckets newest day first. Days are ISO dates, so
// the lexical order is the chronological one.
func SortDaysDescending(groups []DayGroup) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Day > groups[j].Day })
}

// CategoryColor returns the display color of the category with the given id,
// or PlaceholderColor when none matches.
func CategoryColor(categories []Category, id ID) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Color
		}
	}
	return PlaceholderColor
}

// CategoryName returns the name of the category with the given id, or an
// empty string.
func CategoryName(categories []Category, id ID) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}
