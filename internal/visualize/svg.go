package visualize

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	CanvasWidth  = 1400
	CanvasHeight = 900

	baseRadius      = 140
	radiusPerSkill  = 2
	skillRadius     = 30
	centerRadius    = 70
	unknownColor    = "#999"
	backgroundColor = "#f9f9f9"
)

type Point struct {
	X, Y float64
}

var (
	categoryOrder = []string{CategoryTechnical, CategorySoft, CategoryBusiness}

	categoryColors = map[string]string{
		CategoryTechnical: "#1f77b4",
		CategorySoft:      "#ff7f0e",
		CategoryBusiness:  "#2ca02c",
	}

	categoryCenters = map[string]Point{
		CategoryTechnical: {700, 700},
		CategorySoft:      {1000, 200},
		CategoryBusiness:  {400, 200},
	}
)

type SkillNode struct {
	Name string
	At   Point
}

// CategoryLayout is one radial cluster: a centre marker with its skills evenly
// spaced on a circle around it.
type CategoryLayout struct {
	Name      string
	Color     string
	Center    Point
	Radius    float64
	AngleStep float64 // degrees
	Nodes     []SkillNode
}

// Layout positions every category present in c. Known categories come first in
// a fixed order; others follow alphabetically at the canvas centre.
func Layout(c Categorized) []CategoryLayout {
	names := make([]string, 0, len(c))
	for _, name := range categoryOrder {
		if _, ok := c[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range c {
		if _, known := categoryColors[name]; !known {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	layouts := make([]CategoryLayout, 0, len(names))
	for _, name := range names {
		layouts = append(layouts, layoutCategory(name, c[name]))
	}
	return layouts
}

func layoutCategory(name string, skills []string) CategoryLayout {
	center, ok := categoryCenters[name]
	if !ok {
		center = Point{CanvasWidth / 2, CanvasHeight / 2}
	}
	color, ok := categoryColors[name]
	if !ok {
		color = unknownColor
	}

	n := len(skills)
	radius := float64(baseRadius + radiusPerSkill*n)
	step := 360.0 / float64(max(n, 1))

	nodes := make([]SkillNode, 0, n)
	for i, skill := range skills {
		angle := float64(i) * step * math.Pi / 180
		nodes = append(nodes, SkillNode{
			Name: skill,
			At: Point{
				X: center.X + radius*math.Cos(angle),
				Y: center.Y + radius*math.Sin(angle),
			},
		})
	}

	return CategoryLayout{
		Name:      name,
		Color:     color,
		Center:    center,
		Radius:    radius,
		AngleStep: step,
		Nodes:     nodes,
	}
}

// Render draws c as a standalone SVG document.
func Render(c Categorized) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", CanvasWidth, CanvasHeight)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s" rx="10" ry="10"/>`+"\n", backgroundColor)

	for _, l := range Layout(c) {
		cx, cy := num(l.Center.X), num(l.Center.Y)
		for _, node := range l.Nodes {
			x, y := num(node.At.X), num(node.At.Y)
			fmt.Fprintf(&b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1" opacity="0.35"/>`+"\n",
				cx, cy, x, y, l.Color)
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%d" fill="%s" opacity="0.35"/>`+"\n",
				x, y, skillRadius, l.Color)
			fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="11" font-family="Arial" fill="black" stroke="black" stroke-width="0.3" font-weight="normal">%s</text>`+"\n",
				x, y, html.EscapeString(node.Name))
		}
		// centre marker last so it sits above the spokes
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%d" fill="%s" opacity="0.9"/>`+"\n", cx, cy, centerRadius, l.Color)
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="16" font-family="Arial" fill="white" font-weight="bold">%s</text>`+"\n",
			cx, cy, html.EscapeString(l.Name))
	}

	b.WriteString("</svg>")
	return b.String()
}

// Embed wraps an SVG document in the scrollable container host pages expect.
func Embed(svg string) string {
	return `<div id="svg-container" style="overflow: auto; width: 100%; height: 100%;">` + svg + `</div>`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
