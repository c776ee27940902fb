package extractor

import (
	"fmt"
	"sort"
)

// Override replaces the extracted name for one code
type Override struct {
	Code Code
	Name string
}

// Overrides is a manual patch table, kept sorted by code so it always
// applies in the same order
type Overrides []Override

// DefaultOverrides patches the names the push/assign scan is known to get
// wrong: both are built with Chr(37) across several pushes.
func DefaultOverrides() Overrides {
	return Overrides{
		{Code: 0x0136, Name: "100% Babyface"},
		{Code: 0x0139, Name: "100% Heel"},
	}
}

// DefaultOverrideMap is DefaultOverrides keyed the way config files write it
func DefaultOverrideMap() map[string]string {
	out := make(map[string]string)
	for _, o := range DefaultOverrides() {
		out[o.Code.String()] = o.Name
	}
	return out
}

// ParseOverrides converts a config map (hex code -> name) to an Overrides table
func ParseOverrides(m map[string]string) (Overrides, error) {
	out := make(Overrides, 0, len(m))
	seen := make(map[Code]string, len(m))
	for key, name := range m {
		code, err := ParseCode(key)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", key, err)
		}
		if prev, dup := seen[code]; dup {
			return nil, fmt.Errorf("override %s given twice (%q and %q)", code, prev, name)
		}
		seen[code] = name
		out = append(out, Override{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Apply writes every override into t. Codes already present keep their
// position; new codes are appended in override order.
func (o Overrides) Apply(t *NameTable) {
	for _, ov := range o {
		t.Set(ov.Code, ov.Name)
	}
}
