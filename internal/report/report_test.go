package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-at-pretension-io/tew-attrs/internal/facts"
)

func TestWriteCSVScenario(t *testing.T) {
	rows := []facts.AttributeRow{
		{Number: 1, Code: 1, Name: "Strength", Description: "How strong the worker is."},
		{Number: 2, Code: 2, Name: "Speed", Description: "(No definition found)"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "#,Name,Description,Category\n" +
		"1,Strength,How strong the worker is.,\n" +
		"2,Speed,(No definition found),\n"
	if got := buf.String(); got != want {
		t.Fatalf("CSV mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	rows := []facts.AttributeRow{{Number: 1, Name: "Menace", Description: "Scary, imposing"}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(buf.String(), `1,Menace,"Scary, imposing",`) {
		t.Fatalf("expected quoted description, got %q", buf.String())
	}
}

func TestReadCategorized(t *testing.T) {
	in := "\ufeff#, Name, Description, Category, Tone\n" +
		"1,Strength,How strong.,Physical,positive\n" +
		"2.0,Speed,\"Fast, agile\",,\n" +
		"3,Menace,Scary.,Mental\n"

	rows, err := ReadCategorized(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCategorized: %v", err)
	}
	want := []facts.AttributeRow{
		{Number: 1, Name: "Strength", Description: "How strong.", Category: "Physical", Tone: "positive"},
		{Number: 2, Name: "Speed", Description: "Fast, agile"},
		{Number: 3, Name: "Menace", Description: "Scary.", Category: "Mental"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCategorizedErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "missing_column", in: "#,Name\n1,Strength\n"},
		{name: "bad_number", in: "#,Name,Description\nx,Strength,d\n"},
		{name: "fractional_number", in: "#,Name,Description\n1.5,Strength,d\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCategorized(strings.NewReader(tt.in)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestToneColor(t *testing.T) {
	tests := map[string]string{
		"Positive": "#d4edda",
		"positive": "#d4edda",
		"NEUTRAL":  "#fff3cd",
		"Negative": "#f8d7da",
		"":         "white",
		"nan":      "white",
	}
	for tone, want := range tests {
		if got := ToneColor(tone); got != want {
			t.Fatalf("ToneColor(%q) = %q, want %q", tone, got, want)
		}
	}
}

func TestCategoryFileName(t *testing.T) {
	tests := map[string]string{
		"Physical":        "category_Physical.html",
		"In Ring Skills":  "category_In_Ring_Skills.html",
		`Mic/Promo: "Yes"`: "category_Mic_Promo___Yes_.html",
	}
	for in, want := range tests {
		if got := CategoryFileName(in); got != want {
			t.Fatalf("CategoryFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildSite(t *testing.T) {
	rows := []facts.AttributeRow{
		{Number: 1, Name: "Strength", Description: "How strong.", Category: "Physical", Tone: "Positive"},
		{Number: 2, Name: "<Menace>", Description: "Scary & mean.", Category: "Mental Skills"},
		{Number: 3, Name: "Speed", Description: "Fast.", Category: "Physical"},
		{Number: 4, Name: "Unsorted", Description: "None."},
	}

	pages, err := BuildSite("TEW Worker Attributes and Definitions", rows)
	if err != nil {
		t.Fatalf("BuildSite: %v", err)
	}
	var names []string
	byName := map[string]string{}
	for _, p := range pages {
		names = append(names, p.Name)
		byName[p.Name] = string(p.Content)
	}
	wantNames := []string{"index.html", "category_Mental_Skills.html", "category_Physical.html"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}

	index := byName["index.html"]
	for _, want := range []string{
		"<h2>TEW Worker Attributes and Definitions</h2>",
		`<a href="category_Mental_Skills.html">Mental Skills</a>`,
		`id="searchBox"`,
		`id="backToTopBtn"`,
		"&lt;Menace&gt;",
		"Scary &amp; mean.",
		"background-color: #d4edda",
		"<td>4</td>",
	} {
		if !strings.Contains(index, want) {
			t.Fatalf("index missing %q", want)
		}
	}

	physical := byName["category_Physical.html"]
	if !strings.Contains(physical, "<h2>Category: Physical</h2>") || !strings.Contains(physical, `href="index.html"`) {
		t.Fatalf("category page missing heading or back link:\n%s", physical)
	}
	if strings.Contains(physical, "Menace") || strings.Contains(physical, "Unsorted") {
		t.Fatalf("category page leaked other rows")
	}
	if strings.Contains(physical, "searchBox") {
		t.Fatalf("category page should not carry the search box")
	}
}

func TestWriteSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	pages := []Page{{Name: "index.html", Content: []byte("<html></html>")}}
	if err := WriteSite(dir, pages); err != nil {
		t.Fatalf("WriteSite: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if string(got) != "<html></html>" {
		t.Fatalf("unexpected content %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
