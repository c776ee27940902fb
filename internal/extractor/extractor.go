package extractor

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

// Code is the attribute identifier shared by the name and definition listings
type Code uint32

func (c Code) String() string {
	return fmt.Sprintf("0x%04X", uint32(c))
}

// ParseCode parses a hexadecimal code written as 0x0136, 0136h or 0136
func ParseCode(s string) (Code, error) {
	raw := strings.TrimSpace(s)
	digits := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if digits == raw {
		digits = strings.TrimSuffix(strings.TrimSuffix(raw, "h"), "H")
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute code %q: %w", s, err)
	}
	return Code(v), nil
}

// NameRecord is one code/name pair in table order
type NameRecord struct {
	Code Code
	Name string
}

// NameTable maps codes to display names and remembers the order in which
// each code was first seen. Overwriting a code keeps its position.
type NameTable struct {
	m *orderedmap.OrderedMap[Code, string]
}

// NewNameTable creates an empty table
func NewNameTable() *NameTable {
	return &NameTable{m: orderedmap.New[Code, string]()}
}

// Set stores name for code, replacing any previous value in place
func (t *NameTable) Set(code Code, name string) {
	t.m.Set(code, name)
}

// Get returns the name for code
func (t *NameTable) Get(code Code) (string, bool) {
	return t.m.Get(code)
}

// Len returns the number of distinct codes
func (t *NameTable) Len() int {
	return t.m.Len()
}

// Records returns the table contents in iteration order
func (t *NameTable) Records() []NameRecord {
	out := make([]NameRecord, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, NameRecord{Code: pair.Key, Name: pair.Value})
	}
	return out
}

// Definitions maps codes to recovered descriptions
type Definitions map[Code]string

// Extractor scans disassembly listings for attribute names and definitions
type Extractor struct {
	dialect Dialect
	p       *patterns
	logger  *zap.Logger
}

// New creates an Extractor for the given dialect. Blank dialect fields
// fall back to DefaultDialect; a nil logger discards output.
func New(d Dialect, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	d = d.withDefaults()
	return &Extractor{dialect: d, p: d.compile(), logger: logger}
}

// Dialect returns the effective dialect
func (e *Extractor) Dialect() Dialect {
	return e.dialect
}

// ExtractNames runs the name scan with the default dialect
func ExtractNames(text string) *NameTable {
	return New(DefaultDialect(), nil).Names(text)
}

// ExtractDefinitions runs the definition scan with the default dialect
func ExtractDefinitions(lines []string) Definitions {
	return New(DefaultDialect(), nil).Definitions(lines)
}
