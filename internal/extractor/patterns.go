package extractor

import (
	"regexp"
	"strings"
)

var (
	// Pattern: cmp [eax], <code>h
	comparePattern = regexp.MustCompile(`cmp \[eax\], ([0-9A-Fa-f]+)h`)

	// Pattern: push <addr>h ; "<literal>"
	// The literal runs to the last quote on the line so that
	// "100" & Chr(37) & " Babyface" survives intact for normalization.
	pushPattern = regexp.MustCompile(`push [0-9A-Fa-f]+h ; "(.*)"`)

	// Pattern: ... ; "<literal>" (trailing comment on a move)
	commentLiteralPattern = regexp.MustCompile(`; "(.*)"`)

	// Pattern: jmp <target>
	jumpPattern = regexp.MustCompile(`\bjmp\b`)

	// Pattern: " & Chr(37) & " (VB building a literal percent sign)
	percentPattern = regexp.MustCompile(`" *& *Chr\$?\(37\) *& *"`)
)

// Dialect names the registers, variables and runtime routines the
// disassembler emits for the attribute tables. The zero value is not
// usable; call DefaultDialect or fill every field.
type Dialect struct {
	// CodeVariable is the local the attribute code is stored into
	// right after its name is pushed (mov var_14, 0136h).
	CodeVariable string `json:"codeVariable,omitempty" yaml:"codeVariable,omitempty"`

	// ConcatRoutine is the runtime call that joins two string fragments.
	ConcatRoutine string `json:"concatRoutine,omitempty" yaml:"concatRoutine,omitempty"`

	// DestRegister receives the finished description (mov edx, eax ; "...").
	DestRegister string `json:"destRegister,omitempty" yaml:"destRegister,omitempty"`
}

// DefaultDialect matches the Visual Basic 6 listings the tables were dumped from
func DefaultDialect() Dialect {
	return Dialect{
		CodeVariable:  "var_14",
		ConcatRoutine: "__vbaStrCat",
		DestRegister:  "edx",
	}
}

// withDefaults fills blank fields from DefaultDialect
func (d Dialect) withDefaults() Dialect {
	def := DefaultDialect()
	if strings.TrimSpace(d.CodeVariable) == "" {
		d.CodeVariable = def.CodeVariable
	}
	if strings.TrimSpace(d.ConcatRoutine) == "" {
		d.ConcatRoutine = def.ConcatRoutine
	}
	if strings.TrimSpace(d.DestRegister) == "" {
		d.DestRegister = def.DestRegister
	}
	return d
}

// patterns are the dialect-dependent expressions
type patterns struct {
	namePair      *regexp.Regexp
	move          *regexp.Regexp
	concatRoutine string
}

func (d Dialect) compile() *patterns {
	d = d.withDefaults()
	return &patterns{
		// push <addr>h ; "<name>" ... any number of lines ... mov <var>, <code>h
		namePair: regexp.MustCompile(
			`push [0-9A-Fa-f]+h ; "([^\n]*)"(?s:.*?)mov ` +
				regexp.QuoteMeta(d.CodeVariable) + `, ([0-9A-Fa-f]+)h`),
		move:          regexp.MustCompile(`\bmov ` + regexp.QuoteMeta(d.DestRegister) + `\b`),
		concatRoutine: d.ConcatRoutine,
	}
}

// matchCompare returns [code] if line opens a definition block
func matchCompare(line string) []string {
	if m := comparePattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchPush returns [literal] if line pushes a string literal
func matchPush(line string) []string {
	if m := pushPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// isConcatCall reports whether line calls the string concatenation routine
func (p *patterns) isConcatCall(line string) bool {
	return strings.Contains(line, "call") && strings.Contains(line, p.concatRoutine)
}

// matchMove returns [literal] (possibly empty) if line moves the finished
// string into the destination register and carries a comment
func (p *patterns) matchMove(line string) []string {
	if !p.move.MatchString(line) || !strings.Contains(line, ";") {
		return nil
	}
	if m := commentLiteralPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return []string{}
}

// isJump reports whether line is an unconditional jump
func isJump(line string) bool {
	return jumpPattern.MatchString(line)
}

// normalizeLiteral collapses the Chr(37) idiom to "%" and undoubles
// VB-escaped quotes
func normalizeLiteral(s string) string {
	s = percentPattern.ReplaceAllString(s, "%")
	return strings.ReplaceAll(s, `""`, `"`)
}
