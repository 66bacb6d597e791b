package render

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

// Table is a header row plus string cells, already formatted for display.
type Table struct {
	Headers []string
	Rows    [][]string
}

type SummaryLine struct {
	Label string
	Value string
}

// HoldingsReport is the printable portfolio statement.
type HoldingsReport struct {
	Title       string
	GeneratedAt time.Time
	Notice      string
	Summary     []SummaryLine
	Holdings    Table
	Allocation  []Slice
}

type allocationRow struct {
	Name    string
	Value   float64
	Percent float64
	Color   string
}

var holdingsReportTemplate = template.Must(template.New("holdings").Funcs(template.FuncMap{
	"money":   FormatMoney,
	"percent": FormatPercent,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f2933; margin: 32px; }
h1 { font-size: 22px; margin-bottom: 4px; }
.generated { color: #7b8794; font-size: 11px; margin-bottom: 24px; }
.notice { background: #fff4e5; border: 1px solid #f5a623; padding: 8px; margin-bottom: 16px; font-size: 12px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; font-size: 12px; }
th, td { border-bottom: 1px solid #e4e7eb; padding: 6px 8px; text-align: right; }
th:first-child, td:first-child { text-align: left; }
th { background: #f5f7fa; }
.bar { display: inline-block; height: 10px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="generated">Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</div>
{{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}
<table class="summary">
{{range .Summary}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
<table class="holdings">
<tr>{{range .Holdings.Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Holdings.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Holdings.Headers}}">No holdings</td></tr>
{{end}}</table>
{{with .Allocation}}<table class="allocation">
<tr><th>Asset</th><th>Value</th><th>Share</th><th></th></tr>
{{range .}}<tr><td>{{.Name}}</td><td>{{money .Value}}</td><td>{{percent .Percent}}</td><td><span class="bar" style="width: {{printf "%.0f" .Percent}}px; background: {{.Color}};"></span></td></tr>
{{end}}</table>{{end}}
</body>
</html>
`))

// RenderHoldingsReport writes the statement as a static HTML page that
// needs no scripts, so it prints the same way in a browser and to PDF.
func RenderHoldingsReport(w io.Writer, report HoldingsReport) error {
	total := 0.0
	for _, s := range report.Allocation {
		total += s.Value
	}
	rows := make([]allocationRow, 0, len(report.Allocation))
	for i, s := range report.Allocation {
		row := allocationRow{Name: s.Name, Value: s.Value, Color: SliceColor(i)}
		if total > 0 {
			row.Percent = s.Value / total * 100
		}
		rows = append(rows, row)
	}

	return holdingsReportTemplate.Execute(w, struct {
		HoldingsReport
		Allocation []allocationRow
	}{report, rows})
}

func FormatMoney(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatQuantity prints the shortest representation that round-trips.
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
