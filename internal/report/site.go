package report

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/robert-at-pretension-io/tew-attrs/internal/facts"
)

// IndexPage is the file name of the main page
const IndexPage = "index.html"

var unsafeFileChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// CategoryFileName is the page name for a category
func CategoryFileName(category string) string {
	name := unsafeFileChars.ReplaceAllString(strings.ReplaceAll(category, " ", "_"), "_")
	return "category_" + name + ".html"
}

// Page is one rendered HTML file
type Page struct {
	Name    string
	Content []byte
}

type tableRow struct {
	Number      int
	Name        string
	Description string
	Color       template.CSS
}

type categoryLink struct {
	Name string
	Href string
}

type pageData struct {
	Title      string
	Index      bool
	Categories []categoryLink
	Rows       []tableRow
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// BuildSite renders the index page and one page per non-empty category
func BuildSite(title string, rows []facts.AttributeRow) ([]Page, error) {
	categories := facts.Categories(rows)

	index := pageData{Title: title, Index: true, Rows: tableRows(rows)}
	for _, c := range categories {
		index.Categories = append(index.Categories, categoryLink{Name: c, Href: CategoryFileName(c)})
	}

	pages := make([]Page, 0, len(categories)+1)
	content, err := render(index)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", IndexPage, err)
	}
	pages = append(pages, Page{Name: IndexPage, Content: content})

	for _, c := range categories {
		name := CategoryFileName(c)
		content, err := render(pageData{
			Title: "Category: " + c,
			Rows:  tableRows(facts.FilterByCategory(rows, c)),
		})
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		pages = append(pages, Page{Name: name, Content: content})
	}
	return pages, nil
}

// WriteSite writes every page into dir
func WriteSite(dir string, pages []Page) error {
	for _, p := range pages {
		if err := WriteFileAtomic(filepath.Join(dir, p.Name), p.Content); err != nil {
			return err
		}
	}
	return nil
}

func tableRows(rows []facts.AttributeRow) []tableRow {
	out := make([]tableRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, tableRow{
			Number:      r.Number,
			Name:        r.Name,
			Description: r.Description,
			Color:       template.CSS(ToneColor(r.Tone)),
		})
	}
	return out
}

func render(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const pageHTML = `<html>
<head>
<meta charset='utf-8'>
<title>{{.Title}}</title>
<style>
    body { font-family: Arial, sans-serif; margin: 40px; background-color: #f9f9f9; }
    h2 { color: #333; }
    a { text-decoration: none; color: #004466; margin-right: 20px; }
    input[type="text"] { width: 300px; padding: 10px; margin: 20px 0; font-size: 16px; }
    table { border-collapse: collapse; width: 100%; background-color: #fff; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
    th, td { padding: 12px 16px; border: 1px solid #ddd; text-align: left; vertical-align: top; }
    th { background-color: #004466; color: #fff; position: sticky; top: 0; z-index: 1; }
    tr:nth-child(even) { background-color: #f2f2f2; }
    tr:hover { background-color: #e6f7ff; }
    .container { overflow-x: auto; }
    #backToTopBtn { display: none; position: fixed; bottom: 40px; right: 40px; z-index: 99; font-size: 16px;
        border: none; outline: none; background-color: #333; color: white; cursor: pointer;
        padding: 10px 16px; border-radius: 8px; box-shadow: 0px 2px 5px rgba(0,0,0,0.3); }
    #backToTopBtn:hover { background-color: #555; }
</style>
{{- if .Index}}
<script>
    function filterTable() {
        let input = document.getElementById("searchBox").value.toLowerCase();
        let rows = document.querySelectorAll("table tr:not(:first-child)");
        rows.forEach(row => {
            let text = row.textContent.toLowerCase();
            row.style.display = text.includes(input) ? "" : "none";
        });
    }
    window.onscroll = function() { scrollFunction(); };
    function scrollFunction() {
        let btn = document.getElementById("backToTopBtn");
        if (document.body.scrollTop > 300 || document.documentElement.scrollTop > 300) {
            btn.style.display = "block";
        } else {
            btn.style.display = "none";
        }
    }
    function topFunction() {
        window.scrollTo({ top: 0, behavior: 'smooth' });
    }
</script>
{{- end}}
</head><body>
<h2>{{.Title}}</h2>
{{- if .Index}}
<input type="text" id="searchBox" onkeyup="filterTable()" placeholder="Search attributes...">
<div style='margin-top: 20px;'><strong>Jump to Category:</strong></div>
<div style='margin-top: 10px; margin-bottom: 20px;'>
{{- range .Categories}}
<a href="{{.Href}}">{{.Name}}</a>
{{- end}}
</div>
{{- else}}
<div><a href="index.html">← Back to Main Page</a></div><br>
{{- end}}
<div class="container">
<table>
    <tr>
        <th>#</th>
        <th>Name</th>
        <th>Description</th>
    </tr>
{{- range .Rows}}
<tr><td>{{.Number}}</td><td style='background-color: {{.Color}}; font-weight: bold;'>{{.Name}}</td><td>{{.Description}}</td></tr>
{{- end}}
</table></div>
{{- if .Index}}
<button onclick="topFunction()" id="backToTopBtn" title="Go to top">⬆ Top</button>
{{- end}}
</body></html>
`
