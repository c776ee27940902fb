package facts

import (
	"sort"
	"strings"
)

// FilterByCategory returns the rows whose category equals category,
// preserving order. An empty category selects nothing.
func FilterByCategory(rows []AttributeRow, category string) []AttributeRow {
	out := []AttributeRow{}
	if category == "" {
		return out
	}
	for _, row := range rows {
		if row.Category == category {
			out = append(out, row)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories in sorted order
func Categories(rows []AttributeRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		c := row.Category
		if strings.TrimSpace(c) == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
