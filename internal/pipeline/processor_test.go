package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/resume"
	"github.com/muhammadolammi/skillsmap/internal/session"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/muhammadolammi/skillsmap/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	reply  []string
	err    error
	masked []string
}

func (f *fakeExtractor) Extract(_ context.Context, maskedText, _ string) ([]string, error) {
	f.masked = append(f.masked, maskedText)
	if f.err != nil {
		return []string{}, f.err
	}
	return append([]string{}, f.reply...), nil
}

type fakeStore struct {
	stored  []string
	saveErr error
	saves   [][]string
}

func (f *fakeStore) FetchSkills(context.Context, uuid.UUID) ([]string, error) {
	return append([]string{}, f.stored...), nil
}

func (f *fakeStore) SaveSkills(_ context.Context, _ uuid.UUID, list []string) (store.SaveResult, error) {
	f.saves = append(f.saves, list)
	if f.saveErr != nil {
		return store.SaveResult{Status: store.StatusError}, f.saveErr
	}
	added := 0
	for _, s := range list {
		if !contains(f.stored, s) {
			f.stored = append(f.stored, s)
			added++
		}
	}
	if added == 0 {
		return store.SaveResult{Status: store.StatusAlreadyExists}, nil
	}
	return store.SaveResult{Status: store.StatusSaved, Count: added}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func docxResume(t *testing.T, paragraphs ...string) resume.Document {
	t.Helper()

	body := ""
	for _, p := range paragraphs {
		body += "<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>"
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml":            `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return resume.Document{Filename: "cv.docx", MediaType: resume.MediaTypeDOCX, Data: buf.Bytes()}
}

func levels(notices []Notice) map[Level][]string {
	out := map[Level][]string{}
	for _, n := range notices {
		out[n.Level] = append(out[n.Level], n.Message)
	}
	return out
}

func TestProcessHappyPath(t *testing.T) {
	ex := &fakeExtractor{reply: []string{"python", "sql"}}
	st := &fakeStore{}
	sess := session.New("s1", uuid.New())

	res := NewProcessor(ex, st).Process(context.Background(), sess,
		docxResume(t, "Jane Citizen jane@example.com 0412 345 678", "Technical Skills", "Python, SQL"))

	assert.False(t, res.Duplicate)
	assert.Equal(t, []string{"python", "sql"}, res.Extracted)
	assert.Equal(t, []string{"python", "sql"}, res.Skills)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, store.SaveResult{Status: store.StatusSaved, Count: 2}, res.Saved)
	assert.Equal(t, []string{"python", "sql"}, sess.Skills())

	require.Len(t, ex.masked, 1)
	assert.Equal(t, "Jane Citizen [EMAIL] [PHONE] Technical Skills Python, SQL", ex.masked[0])
	assert.Equal(t, res.MaskedText, ex.masked[0])

	byLevel := levels(res.Notices)
	assert.Contains(t, byLevel[LevelSuccess], "2 new skills saved to your profile!")
	assert.Contains(t, byLevel[LevelSuccess], "Found 2 skills!")
	assert.Empty(t, byLevel[LevelError])

	assert.Equal(t, "Based on your resume, you have skills in: python, sql\n\nWhat kind of career are you interested in exploring?", res.Greeting)
	require.Len(t, sess.Messages(), 1)
	assert.Equal(t, "assistant", sess.Messages()[0].Role)
}

func TestProcessDuplicateUpload(t *testing.T) {
	ex := &fakeExtractor{reply: []string{"go"}}
	p := NewProcessor(ex, &fakeStore{})
	sess := session.New("s1", uuid.New())
	doc := docxResume(t, "Skills", "Go")

	first := p.Process(context.Background(), sess, doc)
	second := p.Process(context.Background(), sess, doc)

	assert.False(t, first.Duplicate)
	assert.True(t, second.Duplicate)
	assert.Equal(t, []Notice{{Level: LevelInfo, Message: "Resume already processed."}}, second.Notices)
	assert.Equal(t, []string{"go"}, second.Skills)
	assert.Len(t, ex.masked, 1)
}

func TestProcessUnsupportedFormat(t *testing.T) {
	ex := &fakeExtractor{}
	res := NewProcessor(ex, &fakeStore{}).Process(context.Background(), session.New("s1", uuid.New()),
		resume.Document{Filename: "cv.png", MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})

	byLevel := levels(res.Notices)
	require.Len(t, byLevel[LevelError], 1)
	assert.Contains(t, byLevel[LevelError][0], "Error extracting text from resume")
	assert.Contains(t, byLevel[LevelWarning], "No skills found. Try a different file.")
	assert.Equal(t, []string{""}, ex.masked)
	assert.Empty(t, res.Extracted)
	assert.Empty(t, res.Greeting)
}

func TestProcessExtractionServiceFailure(t *testing.T) {
	ex := &fakeExtractor{err: &skills.ServiceError{Model: "m", Err: errors.New("429")}}
	st := &fakeStore{stored: []string{"python"}}

	res := NewProcessor(ex, st).Process(context.Background(), session.New("s1", uuid.New()), docxResume(t, "Skills", "Go"))

	byLevel := levels(res.Notices)
	require.NotEmpty(t, byLevel[LevelWarning])
	assert.Contains(t, byLevel[LevelWarning][0], "Agent skill extraction failed")
	assert.Contains(t, byLevel[LevelInfo], "All extracted skills already exist in your profile.")
	assert.Equal(t, []string{"python"}, res.Skills)
	assert.Zero(t, res.Added)
}

func TestProcessMergesWithSessionSkills(t *testing.T) {
	ex := &fakeExtractor{reply: []string{"python", "excel"}}
	st := &fakeStore{}
	sess := session.New("s1", uuid.New())
	sess.SetSkills([]string{"python", "sql"})

	res := NewProcessor(ex, st).Process(context.Background(), sess, docxResume(t, "Skills", "Python, Excel"))

	assert.Equal(t, []string{"python", "sql", "excel"}, res.Skills)
	assert.Equal(t, 1, res.Added)
	require.Len(t, st.saves, 1)
	assert.Equal(t, []string{"python", "sql", "excel"}, st.saves[0])
}

func TestProcessLoadsStoredSkillsForFreshSession(t *testing.T) {
	ex := &fakeExtractor{reply: []string{"excel"}}
	st := &fakeStore{stored: []string{"python"}}

	res := NewProcessor(ex, st).Process(context.Background(), session.New("s1", uuid.New()), docxResume(t, "Skills", "Excel"))

	assert.Equal(t, []string{"python", "excel"}, res.Skills)
	assert.Equal(t, store.SaveResult{Status: store.StatusSaved, Count: 1}, res.Saved)
}

func TestProcessSaveFailure(t *testing.T) {
	ex := &fakeExtractor{reply: []string{"go"}}
	st := &fakeStore{saveErr: &store.Error{Op: "save skills", Err: errors.New("down")}}

	res := NewProcessor(ex, st).Process(context.Background(), session.New("s1", uuid.New()), docxResume(t, "Skills", "Go"))

	assert.Equal(t, store.StatusError, res.Saved.Status)
	assert.Contains(t, levels(res.Notices)[LevelError], "An error occurred while saving your skills.")
	assert.Equal(t, []string{"go"}, res.Skills)
}

func TestProcessGreetingOnlyEarlyInConversation(t *testing.T) {
	ex := &fakeExtractor{reply: []string{"go"}}
	sess := session.New("s1", uuid.New())
	sess.AppendMessage(session.Message{Role: "user", Content: "hi"})
	sess.AppendMessage(session.Message{Role: "assistant", Content: "hello"})

	res := NewProcessor(ex, nil).Process(context.Background(), sess, docxResume(t, "Skills", "Go"))

	assert.Empty(t, res.Greeting)
	assert.Len(t, sess.Messages(), 2)
	assert.Equal(t, []string{"go"}, res.Skills)
}

func TestGreetingListsFirstFive(t *testing.T) {
	got := Greeting([]string{"a", "b", "c", "d", "e", "f", "g"})
	assert.Equal(t, "Based on your resume, you have skills in: a, b, c, d, e\n\nWhat kind of career are you interested in exploring?", got)
}

func TestResumeHash(t *testing.T) {
	assert.Equal(t, ResumeHash([]byte("x")), ResumeHash([]byte("x")))
	assert.NotEqual(t, ResumeHash([]byte("x")), ResumeHash([]byte("y")))
}
