package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/logger"
	"github.com/muhammadolammi/skillsmap/internal/resume"
	"github.com/muhammadolammi/skillsmap/internal/session"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/muhammadolammi/skillsmap/internal/store"
)

const greetingSkillCount = 5

type SkillExtractor interface {
	Extract(ctx context.Context, maskedText, apiKey string) ([]string, error)
}

type SkillStore interface {
	FetchSkills(ctx context.Context, userID uuid.UUID) ([]string, error)
	SaveSkills(ctx context.Context, userID uuid.UUID, list []string) (store.SaveResult, error)
}

type Result struct {
	// Duplicate is set when the session already processed these exact bytes.
	Duplicate  bool             `json:"duplicate"`
	MaskedText string           `json:"-"`
	Extracted  []string         `json:"extracted"`
	Skills     []string         `json:"skills"`
	Added      int              `json:"added"`
	Saved      store.SaveResult `json:"saved"`
	Greeting   string           `json:"greeting,omitempty"`
	Notices    []Notice         `json:"notices"`
}

func (r *Result) notify(n Notice) {
	r.Notices = append(r.Notices, n)
}

// Processor runs the resume-to-skills pipeline: extract text, mask PII, ask the
// model for skills, merge them into the session and persist the result.
type Processor struct {
	extractor SkillExtractor
	store     SkillStore
}

func NewProcessor(e SkillExtractor, s SkillStore) *Processor {
	return &Processor{extractor: e, store: s}
}

// Process never fails; problems are reported as notices on the result.
func (p *Processor) Process(ctx context.Context, sess *session.Context, doc resume.Document) Result {
	log := logger.Ctx(ctx).With().
		Str("user_id", sess.UserID.String()).
		Str("filename", doc.Filename).
		Logger()

	res := Result{Extracted: []string{}, Notices: []Notice{}}

	hash := ResumeHash(doc.Data)
	if sess.SeenResume(hash) {
		res.Duplicate = true
		res.Skills = sess.Skills()
		res.notify(noticef(LevelInfo, "Resume already processed."))
		return res
	}
	defer sess.MarkResume(hash)

	text, err := resume.ExtractText(doc)
	if err != nil {
		log.Warn().Err(err).Str("media_type", doc.MediaType).Msg("text extraction failed")
		res.notify(noticef(LevelError, "Error extracting text from resume: %v", err))
	}

	res.MaskedText = resume.MaskPII(text)

	extracted, err := p.extractor.Extract(ctx, res.MaskedText, sess.APIKey())
	if err != nil {
		res.notify(noticef(LevelWarning, "Agent skill extraction failed: %v", err))
	}
	if extracted != nil {
		res.Extracted = extracted
	}

	known := sess.Skills()
	if len(known) == 0 && p.store != nil {
		stored, err := p.store.FetchSkills(ctx, sess.UserID)
		if err != nil {
			res.notify(noticef(LevelWarning, "Could not load saved skills: %v", err))
		}
		known = stored
	}

	res.Skills, res.Added = skills.Merge(known, res.Extracted)
	sess.SetSkills(res.Skills)

	if p.store != nil {
		res.Saved = p.saveSkills(ctx, sess.UserID, res.Skills)
		res.notify(savedNotice(res.Saved))
	}

	if len(res.Extracted) == 0 {
		res.notify(noticef(LevelWarning, "No skills found. Try a different file."))
		return res
	}

	res.notify(noticef(LevelSuccess, "Found %d skills!", len(res.Extracted)))
	if len(sess.Messages()) < 2 {
		res.Greeting = Greeting(res.Extracted)
		sess.AppendMessage(session.Message{Role: "assistant", Content: res.Greeting})
	}
	log.Info().Int("extracted", len(res.Extracted)).Int("added", res.Added).Msg("resume processed")
	return res
}

func (p *Processor) saveSkills(ctx context.Context, userID uuid.UUID, list []string) store.SaveResult {
	saved, err := p.store.SaveSkills(ctx, userID, list)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("skills not saved")
		saved.Status = store.StatusError
	}
	return saved
}

func savedNotice(r store.SaveResult) Notice {
	switch r.Status {
	case store.StatusSaved:
		return noticef(LevelSuccess, "%d new skills saved to your profile!", r.Count)
	case store.StatusAlreadyExists:
		return noticef(LevelInfo, "All extracted skills already exist in your profile.")
	default:
		return noticef(LevelError, "An error occurred while saving your skills.")
	}
}

// Greeting summarises up to five skills and invites the user to talk careers.
func Greeting(found []string) string {
	short := found
	if len(short) > greetingSkillCount {
		short = short[:greetingSkillCount]
	}
	return "Based on your resume, you have skills in: " + strings.Join(short, ", ") +
		"\n\nWhat kind of career are you interested in exploring?"
}

func ResumeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
