package extractor

import (
	"strings"

	"go.uber.org/zap"
)

// Names scans the names listing for every push/assign pair:
//
//	push 0040A1B4h ; "Strength"
//	...                              (any number of lines)
//	mov var_14, 0001h
//
// Matches are leftmost and non-overlapping. A code seen twice keeps the
// later name. Text that does not fit the idiom is ignored.
func (e *Extractor) Names(text string) *NameTable {
	table := NewNameTable()
	matches := e.p.namePair.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		code, err := ParseCode(m[2])
		if err != nil {
			e.logger.Debug("skipping name with unparseable code", zap.String("code", m[2]), zap.Error(err))
			continue
		}
		name := strings.TrimSpace(normalizeLiteral(m[1]))
		if prev, ok := table.Get(code); ok && prev != name {
			e.logger.Debug("name overwritten by later match",
				zap.Stringer("code", code), zap.String("previous", prev), zap.String("name", name))
		}
		table.Set(code, name)
	}
	e.logger.Debug("names extracted", zap.Int("matches", len(matches)), zap.Int("codes", table.Len()))
	return table
}
