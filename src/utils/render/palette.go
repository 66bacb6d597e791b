package render

// palette colors pie slices in order of decreasing value, so the largest
// position always gets the first color.
var palette = []string{
	"#f7931a",
	"#627eea",
	"#26a17b",
	"#9945ff",
	"#f0b90b",
	"#e84142",
	"#2a5ada",
	"#c2a633",
	"#00aae4",
	"#8dc351",
	"#808080",
}

// SliceColor returns the color of the i-th largest slice, cycling through
// the palette.
func SliceColor(i int) string {
	return palette[i%len(palette)]
}
