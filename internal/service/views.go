package service

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/pkordes/travel-planner/internal/domain"
)

// DayColors is the palette cycled through by itinerary day headers.
var DayColors = []string{"#4a6cf7", "#38a169", "#ed8936", "#9f7aea", "#f56565", "#4299e1"}

// DefaultBudgetTotal is the trip budget, in whole currency units, used when
// none is configured.
const DefaultBudgetTotal int64 = 15800

// DayGroup is one day of the itinerary view.
type DayGroup struct {
	Day        int               `json:"day"`
	Label      string            `json:"label"`
	Date       string            `json:"date"`
	Color      string            `json:"color"`
	Activities []domain.Activity `json:"activities"`
}

// ItineraryDays groups activities by date. Days are ordered by date string
// (undated activities form the first group) and numbered from 1; within a day
// activities are ordered by time, ties keeping their stored order.
func ItineraryDays(doc domain.Document) []DayGroup {
	byDate := make(map[string][]domain.Activity)
	for _, a := range doc.Itinerary {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	days := make([]DayGroup, 0, len(dates))
	for i, date := range dates {
		acts := byDate[date]
		slices.SortStableFunc(acts, func(a, b domain.Activity) int {
			return cmp.Compare(a.Time, b.Time)
		})
		days = append(days, DayGroup{
			Day:        i + 1,
			Label:      dayLabel(i + 1),
			Date:       date,
			Color:      DayColors[i%len(DayColors)],
			Activities: acts,
		})
	}
	return days
}

func dayLabel(n int) string {
	return "Day " + strconv.Itoa(n)
}

// DiaryTimeline returns the diary entries ordered by date, ties keeping their
// stored order.
func DiaryTimeline(doc domain.Document) []domain.DiaryEntry {
	entries := slices.Clone(doc.DiaryEntries)
	if entries == nil {
		entries = []domain.DiaryEntry{}
	}
	slices.SortStableFunc(entries, func(a, b domain.DiaryEntry) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return entries
}

// CategoryTotal is the amount spent in one budget category.
type CategoryTotal struct {
	Category domain.BudgetCategory `json:"category"`
	Amount   int64                 `json:"amount"`
}

// BudgetSummary is the budget view: what was spent against the trip total.
// Remaining goes negative when the trip is over budget.
type BudgetSummary struct {
	Total      int64           `json:"total"`
	Spent      int64           `json:"spent"`
	Remaining  int64           `json:"remaining"`
	ByCategory []CategoryTotal `json:"byCategory"`
}

// SummarizeBudget totals the budget items of doc against total. ByCategory
// lists every known category in display order, including empty ones.
func SummarizeBudget(doc domain.Document, total int64) BudgetSummary {
	sums := make(map[domain.BudgetCategory]int64, len(domain.BudgetCategories))
	var spent int64
	for _, item := range doc.BudgetItems {
		spent += item.Amount
		sums[item.Category] += item.Amount
	}

	byCategory := make([]CategoryTotal, 0, len(domain.BudgetCategories))
	for _, c := range domain.BudgetCategories {
		byCategory = append(byCategory, CategoryTotal{Category: c, Amount: sums[c]})
	}

	return BudgetSummary{
		Total:      total,
		Spent:      spent,
		Remaining:  total - spent,
		ByCategory: byCategory,
	}
}
