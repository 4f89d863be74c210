package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hartfield-labs/factfind/internal/config"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/pkg/anthropic"
)

// Extractor pulls a structured record out of a conversation transcript
// according to the experiment schema. This is the system under test.
type Extractor struct {
	client    anthropic.Client
	role      config.RoleConfig
	validator *Validator
}

// NewExtractor returns an extractor for the given role. The validator is
// optional; when present, extracted records are checked against the schema
// and violations are logged (not fatal — the evaluator scores whatever
// came out).
func NewExtractor(client anthropic.Client, role config.RoleConfig, validator *Validator) *Extractor {
	return &Extractor{client: client, role: role, validator: validator}
}

// Extract produces a structured record from the conversation text.
func (e *Extractor) Extract(ctx context.Context, schema map[string]any, conversationText string) (record.Record, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"Below is a transcript of a fact-finding conversation between a financial "+
			"advisor and a client. Extract the client's structured information from "+
			"the transcript into a JSON document conforming exactly to the JSON "+
			"schema that follows. For any field the conversation does not reveal, "+
			"use the value '%s'.\n\nTranscript:\n%s\n\nJSON schema:\n%s\n\n"+
			"Please only output the JSON dictionary.",
		record.MissingMarker, conversationText, schemaJSON,
	)
	text, err := complete(ctx, e.client, e.role, "extraction", prompt)
	if err != nil {
		return nil, err
	}
	rec, err := parseRecord(text)
	if err != nil {
		return nil, err
	}

	if e.validator != nil {
		if err := e.validator.Validate(rec); err != nil {
			zap.L().Warn("extract: record does not conform to schema",
				zap.Error(err),
			)
		}
	}
	return rec, nil
}
