package facts

import (
	"github.com/robert-at-pretension-io/tew-attrs/internal/extractor"
	"github.com/robert-at-pretension-io/tew-attrs/internal/merge"
)

// Tables is the JSON snapshot of one extraction run.
// Each slice is a relation with flat rows.
type Tables struct {
	Attributes        []AttributeRow `json:"attributes"`
	OrphanDefinitions []OrphanRow    `json:"orphan_definitions"`
	Summary           SummaryRow     `json:"summary"`
}

// AttributeRow is one merged attribute. Rows read back from a curated CSV
// carry no code (Code 0, CodeHex "").
type AttributeRow struct {
	Number      int    `json:"number"`
	Code        uint32 `json:"code"`
	CodeHex     string `json:"code_hex,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Tone        string `json:"tone,omitempty"`
}

// OrphanRow is a recovered definition whose code has no name
type OrphanRow struct {
	Code        uint32 `json:"code"`
	CodeHex     string `json:"code_hex"`
	Description string `json:"description"`
}

type SummaryRow struct {
	Total   int `json:"total"`
	Missing int `json:"missing"`
	Present int `json:"present"`
}

// BuildTables flattens a merge result into relations
func BuildTables(res merge.Result, defs extractor.Definitions) Tables {
	tables := emptyTables()

	for _, row := range res.Rows {
		tables.Attributes = append(tables.Attributes, AttributeRow{
			Number:      row.Number,
			Code:        uint32(row.Code),
			CodeHex:     row.Code.String(),
			Name:        row.Name,
			Description: row.Description,
			Category:    row.Category,
		})
	}

	for _, code := range res.Orphans {
		tables.OrphanDefinitions = append(tables.OrphanDefinitions, OrphanRow{
			Code:        uint32(code),
			CodeHex:     code.String(),
			Description: defs[code],
		})
	}

	tables.Summary = SummaryRow{
		Total:   res.Stats.Total,
		Missing: res.Stats.Missing,
		Present: res.Stats.Present,
	}
	return tables
}
