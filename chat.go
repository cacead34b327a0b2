package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	usersession "github.com/muhammadolammi/skillsmap/internal/session"
	"github.com/pkg/errors"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// Advisor answers career questions through an ADK runner. One agent session is
// kept per user session so follow-up questions share history.
type Advisor struct {
	appName  string
	runner   *runner.Runner
	sessions session.Service

	mu      sync.Mutex
	started map[string]bool
}

func NewAdvisor(ctx context.Context, apiKey, modelName string) (*Advisor, error) {
	advisor, err := GetAgent(ctx, apiKey, modelName, advisorAgentName)
	if err != nil {
		return nil, err
	}

	inMemoryService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        advisor.Name(),
		Agent:          advisor,
		SessionService: inMemoryService,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create runner")
	}

	return &Advisor{
		appName:  advisor.Name(),
		runner:   r,
		sessions: inMemoryService,
		started:  make(map[string]bool),
	}, nil
}

func (a *Advisor) ensureSession(ctx context.Context, userID, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started[sessionID] {
		return nil
	}
	_, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create advisor session")
	}
	a.started[sessionID] = true
	return nil
}

func (a *Advisor) Ask(ctx context.Context, sess *usersession.Context, question string) (string, error) {
	userID := sess.UserID.String()
	sessionID := sess.AdvisorSessionID()
	if err := a.ensureSession(ctx, userID, sessionID); err != nil {
		return "", err
	}

	msg := advisorMessage(sess.Skills(), sess.Ratings(), question)

	// agent streams fail transiently
	return retry(2, func() (string, error) {
		stream := a.runner.Run(ctx, userID, sessionID, &genai.Content{
			Role: "user",
			Parts: []*genai.Part{
				{Text: msg},
			},
		}, agent.RunConfig{})

		var output string
		for event, err := range stream {
			if err != nil {
				return "", err
			}
			if event != nil && event.IsFinalResponse() && len(event.Content.Parts) > 0 {
				output = event.Content.Parts[0].Text
			}
		}
		if strings.TrimSpace(output) == "" {
			return "", errors.New("empty agent response")
		}
		return output, nil
	})
}

func (a *Advisor) Suggestions() []string {
	return append([]string{}, suggestedPrompts...)
}

// advisorMessage prefixes the question with the user's known skills and ratings.
func advisorMessage(skillList []string, ratings map[string]int, question string) string {
	var b strings.Builder
	b.WriteString("Skills:\n")
	if len(skillList) == 0 {
		b.WriteString("none yet\n")
	} else {
		b.WriteString(strings.Join(skillList, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\nCompetency ratings:\n")
	if len(ratings) == 0 {
		b.WriteString("none yet\n")
	}
	names := make([]string, 0, len(ratings))
	for name := range ratings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %d/10\n", name, ratings[name])
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}
