package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDaySameDay(t *testing.T) {
	groups := GroupByDay([]Transaction{
		{ID: "1", Date: "2024-01-02T10:00"},
		{ID: "2", Date: "2024-01-02T23:00"},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "2024-01-02", groups[0].Day)
	assert.Len(t, groups[0].Transactions, 2)
}

func TestGroupByDayFirstOccurrenceOrder(t *testing.T) {
	groups := GroupByDay([]Transaction{
		{ID: "1", Date: "2024-01-01"},
		{ID: "2", Date: "2024-01-03"},
		{ID: "3", Date: "2024-01-01T08:00"},
		{ID: "4", Date: "2024-01-02"},
	})
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-02"}, days(groups))
	assert.Equal(t, ID("1"), groups[0].Transactions[0].ID)
	assert.Equal(t, ID("3"), groups[0].Transactions[1].ID)

	SortDaysDescending(groups)
	assert.Equal(t, []string{"2024-01-03", "2024-01-02", "2024-01-01"}, days(groups))
	assert.Equal(t, ID("1"), groups[2].Transactions[0].ID, "sorting keeps bucket contents")
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
}

func TestCategoryColor(t *testing.T) {
	cats := []Category{{ID: "1", Name: "Food", Color: "#e57373"}, {ID: "2", Name: "Rent", Color: "#64b5f6"}}
	assert.Equal(t, "#64b5f6", CategoryColor(cats, "2"))
	assert.Equal(t, PlaceholderColor, CategoryColor(cats, "99"))
	assert.Equal(t, PlaceholderColor, CategoryColor(nil, "1"))
	assert.Equal(t, "Food", CategoryName(cats, "1"))
	assert.Empty(t, CategoryName(cats, "99"))
}

func days(groups []DayGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Day)
	}
	return out
}
