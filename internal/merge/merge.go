// Package merge joins extracted names with extracted definitions into the
// numbered attribute rows every report is built from.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/tew-attrs/internal/extractor"
)

// MissingDefinition is the description used when no definition was recovered
const MissingDefinition = "(No definition found)"

// EmptyPolicy decides what an empty committed definition means
type EmptyPolicy string

const (
	// EmptyKeep keeps "" as the description
	EmptyKeep EmptyPolicy = "keep"
	// EmptyMissing treats "" like a missing definition
	EmptyMissing EmptyPolicy = "missing"
)

// ParseEmptyPolicy validates a configured policy name; "" means EmptyKeep
func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch EmptyPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EmptyKeep:
		return EmptyKeep, nil
	case EmptyMissing:
		return EmptyMissing, nil
	default:
		return "", fmt.Errorf("unknown empty-definition policy %q (want %q or %q)", s, EmptyKeep, EmptyMissing)
	}
}

// Row is one attribute in report order
type Row struct {
	Number      int
	Code        extractor.Code
	Name        string
	Description string
	Category    string
}

// Stats are the operator-facing counters for a merge
type Stats struct {
	Total   int
	Missing int
	Present int
}

func (s Stats) String() string {
	return fmt.Sprintf("Total: %d, With definition: %d, Missing definition: %d", s.Total, s.Present, s.Missing)
}

// Result is the merged table
type Result struct {
	Rows  []Row
	Stats Stats

	// Orphans are definition codes with no name, in ascending order.
	// They never become rows.
	Orphans []extractor.Code
}

// Options control Merge
type Options struct {
	Empty EmptyPolicy
}

// Merge produces one row per name, in name-table order, numbered from 1
func Merge(names *extractor.NameTable, defs extractor.Definitions, opts Options) Result {
	records := names.Records()
	res := Result{Rows: make([]Row, 0, len(records))}

	for i, rec := range records {
		desc, ok := defs[rec.Code]
		if ok && desc == "" && opts.Empty == EmptyMissing {
			ok = false
		}
		if !ok {
			desc = MissingDefinition
		}
		res.Rows = append(res.Rows, Row{
			Number:      i + 1,
			Code:        rec.Code,
			Name:        rec.Name,
			Description: desc,
		})
		if desc == MissingDefinition {
			res.Stats.Missing++
		} else {
			res.Stats.Present++
		}
	}
	res.Stats.Total = len(res.Rows)

	for code := range defs {
		if _, ok := names.Get(code); !ok {
			res.Orphans = append(res.Orphans, code)
		}
	}
	sort.Slice(res.Orphans, func(i, j int) bool { return res.Orphans[i] < res.Orphans[j] })

	return res
}
