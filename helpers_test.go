package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/muhammadolammi/skillsmap/internal/logger"
	"github.com/muhammadolammi/skillsmap/internal/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	retryDelay = 0

	calls := 0
	got, err := retry(3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = retry(2, func() (string, error) {
		calls++
		return "", errors.New("permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "permanent")
}

func TestRequireEnv(t *testing.T) {
	assert.NoError(t, requireEnv("A", "x", "B", "y"))

	err := requireEnv("A", "x", "B", "")
	require.Error(t, err)
	assert.Equal(t, "empty B in environment", err.Error())
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"GEMINI_MODEL", "ADVISOR_MODEL", "PORT", "WORKERS"} {
		t.Setenv(k, "")
	}
	t.Setenv("R2_ACCCOUNT_ID", "acct")

	cfg := loadConfig()

	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.AdvisorModel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "acct", cfg.R2.AccountID)

	t.Setenv("WORKERS", "5")
	assert.Equal(t, 5, loadConfig().Workers)
}

func TestLoggerConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "pretty")

	cfg := loadConfig()
	assert.Equal(t, logger.Config{Level: "warn", Format: "pretty"}, cfg.loggerConfig(false))
	assert.Equal(t, logger.Config{Level: "debug", Format: "pretty"}, cfg.loggerConfig(true))
}

func TestAdvisorMessage(t *testing.T) {
	msg := advisorMessage([]string{"python", "sql"}, map[string]int{"Writing": 4, "Teamwork": 8}, "What next?")

	assert.Equal(t, "Skills:\npython, sql\n\nCompetency ratings:\n- Teamwork: 8/10\n- Writing: 4/10\n\nQuestion:\nWhat next?", msg)

	empty := advisorMessage(nil, nil, "Hi")
	assert.Equal(t, "Skills:\nnone yet\n\nCompetency ratings:\nnone yet\n\nQuestion:\nHi", empty)
}

func TestRunExtract(t *testing.T) {
	var out bytes.Buffer
	doc := resume.Document{Filename: "cv.docx", MediaType: resume.MediaTypeDOCX, Data: testDocx(t, "Contact jane@example.com Skills: Go")}

	err := runExtract(context.Background(), &out, doc, &stubExtractor{found: []string{"go"}}, true)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Contact [EMAIL] Skills: Go")
	assert.Contains(t, out.String(), "Found 1 skills:\n- go\n")
	assert.NotContains(t, out.String(), "jane@example.com")
}

func TestRunExtractUnsupported(t *testing.T) {
	var out bytes.Buffer
	doc := resume.Document{Filename: "cv.txt", MediaType: "text/plain", Data: []byte("Go")}

	err := runExtract(context.Background(), &out, doc, &stubExtractor{}, false)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "warning:")
	assert.Contains(t, out.String(), "No skills found.")
}
