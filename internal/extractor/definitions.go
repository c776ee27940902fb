package extractor

import (
	"strings"

	"go.uber.org/zap"
)

// Definitions runs the block scanner over the definitions listing.
//
// A block opens on "cmp [eax], <code>h" and collects pushed literals until
// a move into the destination register (whose trailing comment is the last
// fragment) or a jmp closes it. Concat calls between pushes contribute
// nothing; they only mean the surrounding fragments form one string.
// A block cut off by the end of input is still committed.
func (e *Extractor) Definitions(lines []string) Definitions {
	defs := make(Definitions)
	blocks := 0

	for i := 0; i < len(lines); i++ {
		m := matchCompare(lines[i])
		if m == nil {
			continue
		}
		code, err := ParseCode(m[0])
		if err != nil {
			e.logger.Debug("skipping block with unparseable code", zap.String("code", m[0]), zap.Int("line", i+1))
			continue
		}

		var parts []string
		closed := false
		j := i + 1
		for ; j < len(lines) && !closed; j++ {
			line := lines[j]
			if push := matchPush(line); push != nil {
				parts = append(parts, push[0])
				continue
			}
			if e.p.isConcatCall(line) {
				continue
			}
			if final := e.p.matchMove(line); final != nil {
				if len(final) > 0 {
					parts = append(parts, final[0])
				}
				closed = true
				continue
			}
			if isJump(line) {
				closed = true
			}
		}
		if !closed {
			e.logger.Debug("definition block ran to end of input",
				zap.Stringer("code", code), zap.Int("line", i+1), zap.Int("fragments", len(parts)))
		}

		defs[code] = normalizeLiteral(joinFragments(parts))
		blocks++
		// j is one past the closing line; the outer loop increments first.
		i = j - 1
	}

	e.logger.Debug("definitions extracted", zap.Int("blocks", blocks), zap.Int("codes", len(defs)))
	return defs
}

// joinFragments joins fragments with exactly one space between them.
// Padding the listing carried at a fragment edge is dropped, as are
// fragments that are blank once trimmed.
func joinFragments(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
