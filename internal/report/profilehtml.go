package report

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"datacompare/internal/compare"
	"datacompare/internal/profile"
)

var profileTemplate = template.Must(template.New("profile").Funcs(template.FuncMap{
	"stats":   numericStats,
	"samples": sampleList,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<title>Data Profiling Comparison</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.header { background-color: #f8f9fa; padding: 20px; border-radius: 5px; }
.profiles { display: flex; gap: 20px; align-items: flex-start; }
.profile { flex: 1; padding: 15px; border: 1px solid #dee2e6; border-radius: 5px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #dee2e6; padding: 8px; text-align: left; }
th { background-color: #f8f9fa; }
</style>
</head>
<body>
<div class="header">
<h1>Data Profiling Comparison</h1>
<p>Generated on: {{.Generated}}</p>
</div>
<div class="profiles">
{{range .Profiles}}<div class="profile">
<h2>{{.Title}}</h2>
<p>{{.Rows}} rows, {{len .Columns}} columns</p>
<table>
<tr><th>Column</th><th>Type</th><th>Nulls</th><th>Distinct</th><th>Min / Max / Mean</th><th>Samples</th></tr>
{{range .Columns}}<tr>
<td>{{.Name}}</td>
<td>{{.Type}}</td>
<td>{{.Nulls}}</td>
<td>{{.Distinct}}{{if .Capped}}+{{end}}</td>
<td>{{stats .}}</td>
<td>{{samples .}}</td>
</tr>
{{end}}</table>
</div>
{{end}}</div>
</body>
</html>
`))

// ProfileHTML writes the side-by-side profiling comparison and returns its
// path.
func (w *Writer) ProfileHTML(res compare.Result) (string, error) {
	path, err := w.path("profile_report", "html")
	if err != nil {
		return "", wrapReport("profiling", err)
	}

	data := struct {
		Generated string
		Profiles  []profile.Profile
	}{
		Generated: w.now().Format(timestampLayout),
		Profiles: []profile.Profile{
			profile.Build("Source Data Profile", res.Source),
			profile.Build("Target Data Profile", res.Target),
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return "", wrapReport("profiling", err)
	}
	if err := profileTemplate.Execute(f, data); err != nil {
		f.Close()
		return "", wrapReport("profiling", err)
	}
	if err := f.Close(); err != nil {
		return "", wrapReport("profiling", err)
	}
	return path, nil
}

func numericStats(c profile.ColumnProfile) string {
	if !c.Numeric {
		return ""
	}
	return fmt.Sprintf("%g / %g / %g", c.Min, c.Max, c.Mean)
}

func sampleList(c profile.ColumnProfile) string {
	return strings.Join(c.Samples, ", ")
}
