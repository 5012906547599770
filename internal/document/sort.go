package document

import (
	"sort"
	"strings"

	"budgap/internal/core"
)

// Iteration order over the maps is random; list operations sort before
// returning so both backends page identically.

func sortBudgets(items []core.Budget) {
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].CreatedAt.Compare(items[j].CreatedAt); c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

func sortGoals(items []core.Goal) {
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].CreatedAt.Compare(items[j].CreatedAt); c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

func sortCategories(items []core.Category) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].IsDefault != items[j].IsDefault {
			return items[i].IsDefault
		}
		if c := strings.Compare(items[i].Name, items[j].Name); c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

func sortNotifications(items []core.Notification) {
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].CreatedAt.Compare(items[j].CreatedAt); c != 0 {
			return c > 0
		}
		return items[i].ID > items[j].ID
	})
}
