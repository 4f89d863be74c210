// Package generate holds the LLM-backed pipeline stages: template
// derivation, synthetic ground-truth forms, conversation rendering and
// structured extraction. Each stage takes an injected client and role
// configuration; nothing is shared through package state.
package generate

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hartfield-labs/factfind/internal/config"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/internal/resilience"
	"github.com/hartfield-labs/factfind/pkg/anthropic"
)

// complete sends a single-turn prompt for the given role and returns the
// response text, with transient failures retried.
func complete(ctx context.Context, client anthropic.Client, role config.RoleConfig, roleName, prompt string) (string, error) {
	temp := role.Temperature
	resp, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       role.Model,
			MaxTokens:   role.MaxTokens,
			Temperature: &temp,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
	})
	if err != nil {
		return "", eris.Wrapf(err, "generate: %s completion", roleName)
	}
	resp.Usage.LogCost(role.Model, roleName)
	return resp.Text, nil
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// parseRecord decodes an LLM response into a record, scrubbing markdown
// wrapping first.
func parseRecord(text string) (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal([]byte(cleanJSON(text)), &rec); err != nil {
		return nil, eris.Wrap(err, "generate: parse response JSON")
	}
	return rec, nil
}
