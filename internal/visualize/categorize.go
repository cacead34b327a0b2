package visualize

import "strings"

const (
	CategoryTechnical = "Technical Skills"
	CategorySoft      = "Soft Skills"
	CategoryBusiness  = "Business Skills"
)

// Categorized maps a category name to its skills. Nothing here is persisted.
type Categorized map[string][]string

var (
	softKeywords     = []string{"teamwork", "communication", "problem solving", "initiative and innovation", "learning"}
	businessKeywords = []string{"digital literacy", "planning and organisation", "numeracy", "reading", "writing"}
)

// Categorize places stored resume skills under Technical and rated competencies
// under Soft or Business by name. Competencies rated 0 are still shown.
func Categorize(technical []string, competencies map[string]int) Categorized {
	out := Categorized{
		CategoryTechnical: {},
		CategorySoft:      {},
		CategoryBusiness:  {},
	}

	rated := make(map[string]struct{}, len(competencies))
	for name := range competencies {
		rated[strings.ToLower(name)] = struct{}{}
	}
	// keyword order keeps the layout stable between renders
	for _, kw := range softKeywords {
		if _, ok := rated[kw]; ok {
			out[CategorySoft] = append(out[CategorySoft], kw)
		}
	}
	for _, kw := range businessKeywords {
		if _, ok := rated[kw]; ok {
			out[CategoryBusiness] = append(out[CategoryBusiness], kw)
		}
	}

	for _, s := range technical {
		out[CategoryTechnical] = append(out[CategoryTechnical], strings.ToLower(s))
	}
	return out
}
