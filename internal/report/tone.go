package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var toneColors = map[string]string{
	"Positive": "#d4edda", // light green
	"Neutral":  "#fff3cd", // light yellow
	"Negative": "#f8d7da", // light red
}

// ToneColor returns the name-cell background for a tone, "white" when unknown
func ToneColor(tone string) string {
	key := cases.Title(language.Und).String(strings.TrimSpace(tone))
	if c, ok := toneColors[key]; ok {
		return c
	}
	return "white"
}
