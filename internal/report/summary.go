package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"datacompare/internal/compare"
)

var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Data Comparison Test Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.header { background-color: #f8f9fa; padding: 20px; border-radius: 5px; }
.section { margin: 20px 0; padding: 15px; border: 1px solid #dee2e6; border-radius: 5px; }
.pass { color: green; }
.fail { color: red; }
.details { margin-left: 20px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #dee2e6; padding: 8px; text-align: left; }
th { background-color: #f8f9fa; }
</style>
</head>
<body>
<div class="header">
<h1>Data Comparison Test Report</h1>
<p>Generated on: {{.Generated}}</p>
</div>
{{range .Sections}}<div class="section">
<h2>{{.Title}} <span class="{{.Status}}">{{.Mark}}</span></h2>
{{if .Rows}}<table>
<tr><th>Metric</th><th>Value</th></tr>
{{range .Rows}}{{if .Heading}}<tr><td colspan="2"><strong>{{.Key}}</strong></td></tr>
{{else}}<tr><td>{{.Key}}</td><td>{{.Value}}</td></tr>
{{end}}{{end}}</table>
{{end}}{{range .Blocks}}<div class="details"><pre>{{.}}</pre></div>
{{end}}</div>
{{end}}</body>
</html>
`))

type summaryData struct {
	Generated string
	Sections  []summarySection
}

type summarySection struct {
	Title  string
	Status string
	Mark   string
	Rows   []summaryRow
	Blocks []string
}

type summaryRow struct {
	Key     string
	Value   string
	Heading bool
}

// SummaryHTML writes the per-check summary report and returns its path.
func (w *Writer) SummaryHTML(res compare.Result) (string, error) {
	path, err := w.path("summary_report", "html")
	if err != nil {
		return "", wrapReport("summary", err)
	}

	data := summaryData{Generated: w.now().Format(timestampLayout)}
	for _, c := range res.Checks {
		data.Sections = append(data.Sections, buildSection(c))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", wrapReport("summary", err)
	}
	if err := summaryTemplate.Execute(f, data); err != nil {
		f.Close()
		return "", wrapReport("summary", err)
	}
	if err := f.Close(); err != nil {
		return "", wrapReport("summary", err)
	}
	return path, nil
}

func buildSection(c compare.Check) summarySection {
	sec := summarySection{
		Title:  checkTitle(c.Name),
		Status: "fail",
		Mark:   "✗",
	}
	if c.Passed {
		sec.Status, sec.Mark = "pass", "✓"
	}

	keys := make([]string, 0, len(c.Details))
	for k := range c.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := c.Details[k].(type) {
		case map[string]int:
			sec.Rows = append(sec.Rows, summaryRow{Key: k, Heading: true})
			subs := make([]string, 0, len(v))
			for sk := range v {
				subs = append(subs, sk)
			}
			sort.Strings(subs)
			for _, sk := range subs {
				sec.Rows = append(sec.Rows, summaryRow{Key: sk, Value: fmt.Sprint(v[sk])})
			}
		default:
			if block, ok := jsonBlocks(v); ok {
				sec.Blocks = append(sec.Blocks, block...)
				continue
			}
			sec.Rows = append(sec.Rows, summaryRow{Key: k, Value: fmt.Sprint(v)})
		}
	}
	return sec
}

// jsonBlocks renders slice-valued details (the expectation outcomes) as
// one indented JSON block per element.
func jsonBlocks(v any) ([]string, bool) {
	items, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		b, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return nil, false
		}
		out = append(out, string(b))
	}
	return out, true
}

func asSlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

var titleCaser = cases.Title(language.English)

func checkTitle(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}
