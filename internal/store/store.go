package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/database"
	"github.com/muhammadolammi/skillsmap/internal/logger"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/pkg/errors"
)

var ErrUnavailable = errors.New("store unavailable")

// Error records which store operation failed. It matches ErrUnavailable.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

type SaveStatus string

const (
	StatusSaved         SaveStatus = "saved"
	StatusUpdated       SaveStatus = "updated"
	StatusAlreadyExists SaveStatus = "already_exists"
	StatusError         SaveStatus = "error"
)

type SaveResult struct {
	Status SaveStatus `json:"status"`
	Count  int        `json:"count"`
}

// Querier is the subset of database.Queries the store needs.
type Querier interface {
	GetUserSkills(ctx context.Context, userID uuid.UUID) ([]string, error)
	GetExistingUserSkills(ctx context.Context, arg database.GetExistingUserSkillsParams) ([]string, error)
	InsertUserSkill(ctx context.Context, arg database.InsertUserSkillParams) (int64, error)
	GetUserCompetencies(ctx context.Context, userID uuid.UUID) ([]database.GetUserCompetenciesRow, error)
	UpsertUserCompetency(ctx context.Context, arg database.UpsertUserCompetencyParams) error
}

// Store persists skills and competency ratings per user. Reads that fail return
// empty data together with an error matching ErrUnavailable, so callers can keep
// going and surface a notice.
type Store struct {
	q Querier
}

func New(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) FetchSkills(ctx context.Context, userID uuid.UUID) ([]string, error) {
	found, err := s.q.GetUserSkills(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch skills")
		return []string{}, &Error{Op: "fetch skills", Err: err}
	}
	if found == nil {
		found = []string{}
	}
	return found, nil
}

// SaveSkills inserts the skills the user does not have yet. When every skill is
// already stored the status is already_exists and nothing is written.
func (s *Store) SaveSkills(ctx context.Context, userID uuid.UUID, list []string) (SaveResult, error) {
	unique := dedupe(list)

	existing, err := s.q.GetExistingUserSkills(ctx, database.GetExistingUserSkillsParams{
		UserID: userID,
		Skills: unique,
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("failed to check existing skills")
		return SaveResult{Status: StatusError}, &Error{Op: "save skills", Err: err}
	}
	if len(existing) == len(unique) {
		return SaveResult{Status: StatusAlreadyExists}, nil
	}

	have := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		have[e] = struct{}{}
	}

	count := 0
	for _, skill := range unique {
		if _, ok := have[skill]; ok {
			continue
		}
		n, err := s.q.InsertUserSkill(ctx, database.InsertUserSkillParams{UserID: userID, Skill: skill})
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Str("skill", skill).Msg("failed to insert skill")
			return SaveResult{Status: StatusError, Count: count}, &Error{Op: "save skills", Err: err}
		}
		count += int(n)
	}
	return SaveResult{Status: StatusSaved, Count: count}, nil
}

func (s *Store) FetchRatings(ctx context.Context, userID uuid.UUID) (skills.Ratings, error) {
	rows, err := s.q.GetUserCompetencies(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("failed to fetch competencies")
		return skills.Ratings{}, &Error{Op: "fetch ratings", Err: err}
	}
	ratings := make(skills.Ratings, len(rows))
	for _, r := range rows {
		ratings[r.CompetencyName] = int(r.Rating)
	}
	return ratings, nil
}

// SaveRatings writes only the ratings that differ from what is stored.
func (s *Store) SaveRatings(ctx context.Context, userID uuid.UUID, ratings skills.Ratings) (SaveResult, error) {
	existing, err := s.FetchRatings(ctx, userID)
	if err != nil {
		return SaveResult{Status: StatusError}, err
	}

	count := 0
	for _, name := range sortedNames(ratings) {
		rating := ratings[name]
		if old, ok := existing[name]; ok && old == rating {
			continue
		}
		if err := s.UpsertRating(ctx, userID, name, rating); err != nil {
			return SaveResult{Status: StatusError, Count: count}, err
		}
		count++
	}
	if count == 0 {
		return SaveResult{Status: StatusAlreadyExists}, nil
	}
	return SaveResult{Status: StatusUpdated, Count: count}, nil
}

// UpsertRating stores one rating keyed by (user, competency); last write wins.
func (s *Store) UpsertRating(ctx context.Context, userID uuid.UUID, name string, rating int) error {
	err := s.q.UpsertUserCompetency(ctx, database.UpsertUserCompetencyParams{
		UserID:         userID,
		CompetencyName: name,
		Rating:         int32(rating),
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Str("competency", name).Msg("failed to upsert rating")
		return &Error{Op: "upsert rating", Err: err}
	}
	return nil
}
