package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hartfield-labs/factfind/internal/config"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/pkg/anthropic"
)

// TemplateGenerator derives a blank fact-find JSON template from a source
// document's text.
type TemplateGenerator struct {
	client anthropic.Client
	role   config.RoleConfig
}

// NewTemplateGenerator returns a template generator for the given role.
func NewTemplateGenerator(client anthropic.Client, role config.RoleConfig) *TemplateGenerator {
	return &TemplateGenerator{client: client, role: role}
}

// Generate produces a JSON template whose keys mirror the form fields
// found in the document text.
func (g *TemplateGenerator) Generate(ctx context.Context, documentText string) (record.Record, error) {
	prompt := fmt.Sprintf(
		"The following document is a 'Fact Find' form used by financial advisors "+
			"to record client information during an onboarding interview.\n\n%s\n\n"+
			"Please produce a JSON template mirroring the document's structure: every "+
			"field in the form becomes a key, grouped into nested objects per section, "+
			"with empty strings as values and arrays for repeating groups. "+
			"Please only output the JSON dictionary.",
		documentText,
	)
	text, err := complete(ctx, g.client, g.role, "template", prompt)
	if err != nil {
		return nil, err
	}
	return parseRecord(text)
}

// TemplateShortener trims a template to a representative subset so the
// downstream pipeline stays affordable while still exercising the
// variation in client data.
type TemplateShortener struct {
	client anthropic.Client
	role   config.RoleConfig
}

// NewTemplateShortener returns a shortener for the given role.
func NewTemplateShortener(client anthropic.Client, role config.RoleConfig) *TemplateShortener {
	return &TemplateShortener{client: client, role: role}
}

// Shorten removes roughly 20-30% of the template's fields.
func (s *TemplateShortener) Shorten(ctx context.Context, template record.Record) (record.Record, error) {
	templateJSON, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"I am creating a JSON form for Fact Finding used by financial advisors. "+
			"I am aiming to showcase a solution for automatic filling of that form. "+
			"Please extract fields that are representative of the variation of the "+
			"client data in order to best showcase the solution. Please aim to remove "+
			"around 20%% to 30%% of the fields. Please create a shortened JSON variant "+
			"from the JSON template below:\n%s\n"+
			"Please only output the JSON dictionary template.",
		templateJSON,
	)
	text, err := complete(ctx, s.client, s.role, "shortener", prompt)
	if err != nil {
		return nil, err
	}
	return parseRecord(text)
}
