package main

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

const (
	advisorAgentName    = "career_advisor"
	defaultAdvisorModel = "gemini-2.5-pro"
)

func GetAgent(ctx context.Context, apiKey, modelName, agentName string) (agent.Agent, error) {
	if modelName == "" {
		modelName = defaultAdvisorModel
	}
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model")
	}

	advisor, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Suggest Australian career paths from a user's skills",
		Instruction: prompt(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create agent")
	}

	return advisor, nil
}
