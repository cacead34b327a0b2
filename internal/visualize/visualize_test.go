package visualize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	got := Categorize(
		[]string{"Python", "sql"},
		map[string]int{"Writing": 3, "Teamwork": 0, "Communication": 7, "Juggling": 9},
	)

	assert.Equal(t, []string{"python", "sql"}, got[CategoryTechnical])
	assert.Equal(t, []string{"teamwork", "communication"}, got[CategorySoft])
	assert.Equal(t, []string{"writing"}, got[CategoryBusiness])
	assert.Len(t, got, 3)
}

func TestCategorizeEmpty(t *testing.T) {
	got := Categorize(nil, nil)

	require.Len(t, got, 3)
	for _, skills := range got {
		assert.Empty(t, skills)
	}
}

func TestLayoutTechnicalFourSkills(t *testing.T) {
	layouts := Layout(Categorized{CategoryTechnical: {"python", "sql", "excel", "docker"}})

	require.Len(t, layouts, 1)
	l := layouts[0]
	assert.Equal(t, "#1f77b4", l.Color)
	assert.Equal(t, Point{700, 700}, l.Center)
	assert.InDelta(t, 148, l.Radius, 1e-9)
	assert.InDelta(t, 90, l.AngleStep, 1e-9)

	require.Len(t, l.Nodes, 4)
	want := []Point{{848, 700}, {700, 848}, {552, 700}, {700, 552}}
	for i, node := range l.Nodes {
		assert.InDelta(t, want[i].X, node.At.X, 1e-9, node.Name)
		assert.InDelta(t, want[i].Y, node.At.Y, 1e-9, node.Name)
	}
}

func TestLayoutOrderAndUnknownCategory(t *testing.T) {
	layouts := Layout(Categorized{
		"Zeta":            {"a"},
		CategoryBusiness:  {},
		"Alpha":           {},
		CategoryTechnical: {},
		CategorySoft:      {},
	})

	names := make([]string, 0, len(layouts))
	for _, l := range layouts {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{CategoryTechnical, CategorySoft, CategoryBusiness, "Alpha", "Zeta"}, names)

	zeta := layouts[4]
	assert.Equal(t, "#999", zeta.Color)
	assert.Equal(t, Point{700, 450}, zeta.Center)
	assert.InDelta(t, 142, zeta.Radius, 1e-9)
	assert.InDelta(t, 360, zeta.AngleStep, 1e-9)
}

func TestRenderEmptyCategoryDrawsOnlyCentre(t *testing.T) {
	svg := Render(Categorized{CategorySoft: {}})

	assert.True(t, strings.HasPrefix(svg, `<svg width="1400" height="900"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.NotContains(t, svg, "<line")
	assert.Equal(t, 1, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `<circle cx="1000.00" cy="200.00" r="70" fill="#ff7f0e" opacity="0.9"/>`)
	assert.Contains(t, svg, ">Soft Skills</text>")
}

func TestRenderSkills(t *testing.T) {
	svg := Render(Categorized{CategoryTechnical: {"python", "sql", "excel", "docker"}})

	assert.Equal(t, 4, strings.Count(svg, "<line"))
	assert.Equal(t, 5, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `<line x1="700.00" y1="700.00" x2="848.00" y2="700.00" stroke="#1f77b4"`)
	assert.Contains(t, svg, `r="30" fill="#1f77b4" opacity="0.35"`)
	assert.Contains(t, svg, ">docker</text>")
}

func TestRenderEscapesLabels(t *testing.T) {
	svg := Render(Categorized{CategoryTechnical: {"c++ & <xml>"}})

	assert.Contains(t, svg, "c++ &amp; &lt;xml&gt;")
	assert.NotContains(t, svg, "<xml>")
}

func TestEmbed(t *testing.T) {
	out := Embed("<svg></svg>")
	assert.Equal(t, `<div id="svg-container" style="overflow: auto; width: 100%; height: 100%;"><svg></svg></div>`, out)
}
