package skills

import (
	"github.com/pkg/errors"
)

const (
	MinRating = 0
	MaxRating = 10
)

var (
	ErrInvalidRating     = errors.New("rating must be between 0 and 10")
	ErrUnknownCompetency = errors.New("unknown competency")
)

// Competency is one core competency from the Australian Skills Classification.
type Competency struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Ratings maps a competency name to a self-rating. 0 means not applicable,
// 1 beginner, 5 intermediate and 10 expert.
type Ratings map[string]int

// CoreCompetencies is the fixed ASC core competency taxonomy, in display order.
var CoreCompetencies = []Competency{
	{"Teamwork", "Working with others to achieve shared goals and outcomes."},
	{"Communication", "Conveying and receiving information clearly with different audiences."},
	{"Problem Solving", "Identifying problems and working out how to resolve them."},
	{"Initiative and Innovation", "Acting on opportunities and finding new ways of doing things."},
	{"Learning", "Building knowledge and skills and applying them to new situations."},
	{"Digital Literacy", "Using digital devices, software and online services to get work done."},
	{"Planning and Organisation", "Setting goals, managing time and ordering tasks to meet deadlines."},
	{"Numeracy", "Using numbers, calculations and data to make decisions."},
	{"Reading", "Understanding and acting on written information."},
	{"Writing", "Producing clear written text for a purpose and audience."},
}

// LookupCompetency matches name against the taxonomy exactly.
func LookupCompetency(name string) (Competency, bool) {
	for _, c := range CoreCompetencies {
		if c.Name == name {
			return c, true
		}
	}
	return Competency{}, false
}

// ValidateRatings rejects names outside the taxonomy and values outside [0,10].
func ValidateRatings(r Ratings) error {
	for name, rating := range r {
		if _, ok := LookupCompetency(name); !ok {
			return errors.Wrapf(ErrUnknownCompetency, "%q", name)
		}
		if rating < MinRating || rating > MaxRating {
			return errors.Wrapf(ErrInvalidRating, "%s: %d", name, rating)
		}
	}
	return nil
}
