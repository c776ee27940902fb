package facts

import "strconv"

// Delta captures added and removed attribute rows between two snapshots.
// Row numbers are not part of the key: renumbering alone is not a change.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// Empty reports whether the two snapshots carried the same rows
func (d Delta) Empty() bool {
	return len(d.Added.Attributes) == 0 && len(d.Removed.Attributes) == 0 &&
		len(d.Added.OrphanDefinitions) == 0 && len(d.Removed.OrphanDefinitions) == 0
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Attributes = diffAttributeRows(from.Attributes, to.Attributes)
	out.OrphanDefinitions = diffOrphanRows(from.OrphanDefinitions, to.OrphanDefinitions)

	return out
}

func emptyTables() Tables {
	return Tables{
		Attributes:        []AttributeRow{},
		OrphanDefinitions: []OrphanRow{},
	}
}

func diffAttributeRows(from, to []AttributeRow) []AttributeRow {
	return diffRows(from, to, func(r AttributeRow) string {
		return strconv.FormatUint(uint64(r.Code), 16) + "|" + r.Name + "|" + r.Description + "|" + r.Category + "|" + r.Tone
	})
}

func diffOrphanRows(from, to []OrphanRow) []OrphanRow {
	return diffRows(from, to, func(r OrphanRow) string {
		return strconv.FormatUint(uint64(r.Code), 16) + "|" + r.Description
	})
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	var diff []T
	for _, row := range to {
		rowKey := key(row)
		if _, ok := fromSet[rowKey]; !ok {
			diff = append(diff, row)
		}
	}
	if diff == nil {
		diff = []T{}
	}
	return diff
}
