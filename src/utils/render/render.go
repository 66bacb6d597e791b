package render

import (
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Slice is one named share of a pie chart.
type Slice struct {
	Name  string
	Value float64
}

// SortedSlices turns data into slices ordered by value, largest first.
func SortedSlices(data map[string]float64) []Slice {
	slices := make([]Slice, 0, len(data))
	for k, v := range data {
		slices = append(slices, Slice{Name: k, Value: v})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value == slices[j].Value {
			return slices[i].Name < slices[j].Name
		}
		return slices[i].Value > slices[j].Value
	})
	return slices
}

// RenderPieGraph writes a standalone HTML page with an interactive pie chart.
func RenderPieGraph(w io.Writer, title string, slices []Slice) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	items := make([]opts.PieData, 0, len(slices))
	for i, s := range slices {
		items = append(items, opts.PieData{
			Name:      s.Name,
			Value:     s.Value,
			ItemStyle: &opts.ItemStyle{Color: SliceColor(i)},
		})
	}
	pie.AddSeries(title, items)

	return pie.Render(w)
}
