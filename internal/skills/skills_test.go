package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	calls []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type memoryCache struct {
	data   map[string][]string
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]string, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, skills []string) error {
	m.data[key] = skills
	return nil
}

func TestParseReply(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  []string
	}{
		{"python list", "['python', 'sql']", []string{"python", "sql"}},
		{"json list", `["AWS", "Kubernetes"]`, []string{"aws", "kubernetes"}},
		{"fenced list", "```python\n['Go', ' Docker ', 'go']\n```", []string{"go", "docker"}},
		{"bare fence", "```\n[\"terraform\"]\n```", []string{"terraform"}},
		{"non-string elements dropped", "['python', 3, None, True, 'sql']", []string{"python", "sql"}},
		{"duplicates and blanks", "['python', 'python', '', ' SQL ']", []string{"python", "sql"}},
		{"escaped quote", `['it\'s', "c#"]`, []string{"it's", "c#"}},
		{"adjacent strings", "['scikit' '-learn']", []string{"scikit-learn"}},
		{"trailing comma", "['rust',]", []string{"rust"}},
		{"nested list ignored", "['go', ['java']]", []string{"go"}},
		{"parenthesised list", "(['go'])", []string{"go"}},
		{"tuple is not a list", "('python', 'sql')", []string{}},
		{"dict is not a list", "{'python': 1}", []string{}},
		{"string is not a list", "'python'", []string{}},
		{"empty list", "[]", []string{}},
		{"no skills phrase", "No skills can be extracted from this resume.", []string{}},
		{"no valid section phrase", "There is no valid skill section in this document.", []string{}},
		{"quoted fallback", "The resume lists 'Python' and 'SQL' as skills.", []string{"python", "sql"}},
		{"truncated list", "Skills: ['python', 'sql'", []string{"python", "sql"}},
		{"empty reply", "", []string{}},
		{"prose without quotes", "Sorry, I cannot help with that.", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseReply(tc.reply)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseReplyPhraseWinsOverQuotes(t *testing.T) {
	got := ParseReply("No skills can be extracted; the 'Experience' section was ignored.")
	assert.Empty(t, got)
}

func TestMerge(t *testing.T) {
	merged, added := Merge([]string{"python", "sql"}, []string{"python", "excel"})

	assert.Equal(t, []string{"python", "sql", "excel"}, merged)
	assert.Equal(t, 1, added)
}

func TestMergeNormalizesAndKeepsOrder(t *testing.T) {
	existing := []string{"go"}
	merged, added := Merge(existing, []string{" Docker", "GO", "docker", "", "AWS"})

	assert.Equal(t, []string{"go", "docker", "aws"}, merged)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"go"}, existing)
}

func TestMergeIntoEmpty(t *testing.T) {
	merged, added := Merge(nil, nil)
	assert.Empty(t, merged)
	assert.Zero(t, added)
}

func TestExtractorSendsSingleRequest(t *testing.T) {
	fc := &fakeCompleter{reply: "['python', 'sql']"}
	ex := NewExtractor(fc)

	got, err := ex.Extract(context.Background(), "Technical Skills: Python, SQL [EMAIL]", "key-123")

	require.NoError(t, err)
	assert.Equal(t, []string{"python", "sql"}, got)
	require.Len(t, fc.calls, 1)

	req := fc.calls[0]
	assert.Equal(t, "key-123", req.APIKey)
	assert.Equal(t, "You are a helpful resume parser.", req.System)
	assert.InDelta(t, 0.2, req.Temperature, 1e-6)
	assert.EqualValues(t, 300, req.MaxTokens)
	assert.True(t, req.ListOutput)
	assert.Contains(t, req.Prompt, "\"\"\"\nTechnical Skills: Python, SQL [EMAIL]\n\"\"\"")
	assert.Contains(t, req.Prompt, "valid Python list of lowercase strings")
}

func TestExtractorServiceFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("quota exceeded")}
	ex := NewExtractor(fc, WithModelName("test-model"))

	got, err := ex.Extract(context.Background(), "Skills: Go", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExternalService))
	assert.NotNil(t, got)
	assert.Empty(t, got)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "test-model", svcErr.Model)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExtractorBlankTextSkipsModel(t *testing.T) {
	fc := &fakeCompleter{reply: "['python']"}
	got, err := NewExtractor(fc).Extract(context.Background(), "  \n ", "")

	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
	assert.Empty(t, fc.calls)
}

func TestExtractorNoSkillsReply(t *testing.T) {
	fc := &fakeCompleter{reply: "No skills can be extracted from this resume."}
	got, err := NewExtractor(fc).Extract(context.Background(), "Experience: barista", "")

	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
}

func TestExtractorUsesCache(t *testing.T) {
	cache := newMemoryCache()
	fc := &fakeCompleter{reply: "['python']"}
	ex := NewExtractor(fc, WithCache(cache))

	first, err := ex.Extract(context.Background(), "Skills: Python", "")
	require.NoError(t, err)
	second, err := ex.Extract(context.Background(), "Skills: Python", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, fc.calls, 1)
	assert.Equal(t, []string{"python"}, cache.data[CacheKey("Skills: Python")])
}

func TestExtractorCacheErrorFallsThrough(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	fc := &fakeCompleter{reply: "['go']"}

	got, err := NewExtractor(fc, WithCache(cache)).Extract(context.Background(), "Skills: Go", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, got)
	assert.Len(t, fc.calls, 1)
}

func TestCacheKeyIsStable(t *testing.T) {
	assert.Equal(t, CacheKey("abc"), CacheKey("abc"))
	assert.NotEqual(t, CacheKey("abc"), CacheKey("abd"))
	assert.Len(t, CacheKey(""), 64)
}

func TestValidateRatings(t *testing.T) {
	require.NoError(t, ValidateRatings(Ratings{"Teamwork": 0, "Numeracy": 10, "Writing": 5}))

	err := ValidateRatings(Ratings{"Teamwork": 11})
	assert.True(t, errors.Is(err, ErrInvalidRating))

	err = ValidateRatings(Ratings{"Reading": -1})
	assert.True(t, errors.Is(err, ErrInvalidRating))

	err = ValidateRatings(Ratings{"Juggling": 3})
	assert.True(t, errors.Is(err, ErrUnknownCompetency))
}

func TestCoreCompetencies(t *testing.T) {
	require.Len(t, CoreCompetencies, 10)
	for _, c := range CoreCompetencies {
		assert.NotEmpty(t, c.Description, c.Name)
	}
	_, ok := LookupCompetency("Planning and Organisation")
	assert.True(t, ok)
}
