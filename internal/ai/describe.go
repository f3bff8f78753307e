// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ai generates listing descriptions with a language model. The
// generator is best-effort: any failure yields a fixed fallback string and
// the agent writes the description by hand.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Fallback strings shown to agents instead of errors.
const (
	FallbackFailed = "Failed to generate description using AI. Please try again."
	FallbackEmpty  = "Could not generate description."
)

// maxDescriptionWords bounds generated copy; the prompt asks for the same
// limit but models overshoot.
const maxDescriptionWords = 80

// Generator produces listing descriptions.
type Generator struct {
	client  openai.Client
	model   string
	enabled bool
}

// NewGenerator creates a description generator. An empty API key disables
// generation; Describe then always returns the failure fallback.
func NewGenerator(apiKey, model string) *Generator {
	if apiKey == "" {
		return &Generator{}
	}
	return &Generator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		enabled: true,
	}
}

// Enabled reports whether description generation is available.
func (g *Generator) Enabled() bool {
	return g.enabled
}

// Describe generates a short sales description for a listing. It never
// returns an error: failures are logged and a fallback string comes back.
func (g *Generator) Describe(ctx context.Context, title, propertyType, location, features string) string {
	if !g.enabled {
		return FallbackFailed
	}

	prompt := fmt.Sprintf(`Write a compelling, professional, and attractive real estate description (max %d words) for a property with the following details:
Title: %s
Type: %s
Location: %s
Key Features: %s

The tone should be persuasive and invite potential buyers or renters.`,
		maxDescriptionWords, title, propertyType, location, features)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		slog.Warn("description generation failed", "model", g.model, "error", err)
		return FallbackFailed
	}

	if len(resp.Choices) == 0 {
		return FallbackEmpty
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return FallbackEmpty
	}
	return TruncateWords(text, maxDescriptionWords)
}

// TruncateWords cuts text after n words, appending an ellipsis if trimmed.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + "..."
}
