package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/mockflights/pkg/flightsim"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// Rows reserved for the header, status line, detail line and help
	chromeRows = 7
)

// cell kinds, in paint order
const (
	cellEmpty = iota
	cellGraticule
	cellBand
	cellBlip
	cellSelected
)

var (
	graticuleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	bandStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	blipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// project maps a position onto a w x h grid with an equirectangular
// projection: longitude -180..180 left to right, latitude 90..-90 top to
// bottom. ok is false when the position falls off the map.
func project(lon, lat float64, w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return 0, 0, false
	}
	x = int(math.Round((lon + 180) / 360 * float64(w-1)))
	y = int(math.Round((90 - lat) / 180 * float64(h-1)))
	return x, y, true
}

// headingGlyph picks an arrow for the last observed movement.
// Longitude grows to the right and latitude grows upward.
func headingGlyph(dLon, dLat float64) rune {
	if dLon == 0 && dLat == 0 {
		return '•'
	}
	deg := math.Atan2(dLat, dLon) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	arrows := []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
	return arrows[int(math.Round(deg/45))%8]
}

// mapSize is the drawable area inside the border.
func (m model) mapSize() (int, int) {
	w, h := m.width, m.height
	if w == 0 || h == 0 {
		w, h = defaultWidth, defaultHeight
	}
	return max(w-2, 20), max(h-chromeRows-2, 8)
}

// renderMap draws the graticule and one glyph per tracked flight.
func (m model) renderMap() string {
	w, h := m.mapSize()

	glyphs := make([][]rune, h)
	kinds := make([][]uint8, h)
	for y := range glyphs {
		glyphs[y] = make([]rune, w)
		kinds[y] = make([]uint8, w)
		for x := range glyphs[y] {
			glyphs[y][x] = ' '
		}
	}

	paint := func(x, y int, r rune, kind uint8) {
		if x < 0 || y < 0 || y >= h || x >= w {
			return
		}
		if kind >= kinds[y][x] {
			glyphs[y][x] = r
			kinds[y][x] = kind
		}
	}

	// Equator and prime meridian
	if _, ey, ok := project(0, 0, w, h); ok {
		for x := 0; x < w; x++ {
			paint(x, ey, '·', cellGraticule)
		}
	}
	if mx, _, ok := project(0, 0, w, h); ok {
		for y := 0; y < h; y++ {
			paint(mx, y, ':', cellGraticule)
		}
	}

	// Spawn band edges
	for _, lat := range []float64{flightsim.MinLatitude, flightsim.MaxLatitude} {
		if _, by, ok := project(0, lat, w, h); ok {
			for x := 0; x < w; x += 2 {
				paint(x, by, '-', cellBand)
			}
		}
	}

	selected := m.selectedName()
	for _, name := range m.order {
		b := m.flights[name]
		x, y, ok := project(b.report.Longitude, b.report.Latitude, w, h)
		if !ok {
			continue
		}
		kind := uint8(cellBlip)
		if name == selected {
			kind = cellSelected
		}
		paint(x, y, headingGlyph(b.dLon, b.dLat), kind)

		if m.showLabels && kind == cellSelected {
			for i, r := range b.report.Name {
				paint(x+2+i, y, r, cellSelected)
			}
		}
	}

	var out strings.Builder
	out.WriteString(borderStyle.Render("┌" + strings.Repeat("─", w) + "┐"))
	out.WriteString("\n")
	for y := 0; y < h; y++ {
		out.WriteString(borderStyle.Render("│"))
		for x := 0; x < w; x++ {
			out.WriteString(styleFor(kinds[y][x]).Render(string(glyphs[y][x])))
		}
		out.WriteString(borderStyle.Render("│"))
		out.WriteString("\n")
	}
	out.WriteString(borderStyle.Render("└" + strings.Repeat("─", w) + "┘"))
	return out.String()
}

func styleFor(kind uint8) lipgloss.Style {
	switch kind {
	case cellGraticule:
		return graticuleStyle
	case cellBand:
		return bandStyle
	case cellBlip:
		return blipStyle
	case cellSelected:
		return selectedStyle
	default:
		return lipgloss.NewStyle()
	}
}

// offMap counts tracked flights that have drifted past the map edges.
func (m model) offMap() int {
	w, h := m.mapSize()
	n := 0
	for _, b := range m.flights {
		if _, _, ok := project(b.report.Longitude, b.report.Latitude, w, h); !ok {
			n++
		}
	}
	return n
}

// renderDetail describes the selected flight.
func (m model) renderDetail() string {
	name := m.selectedName()
	if name == "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  Waiting for reports...")
	}
	b := m.flights[name]
	return fmt.Sprintf("  %s  lat %10.6f  lon %11.6f  flag %s",
		selectedStyle.Render(fmt.Sprintf("%-12s", name)),
		b.report.Latitude, b.report.Longitude, b.report.Flag)
}
