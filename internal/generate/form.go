package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hartfield-labs/factfind/internal/config"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/pkg/anthropic"
)

// FormGenerator fills the schema with plausible synthetic client data,
// deliberately marking a slice of fields as withheld. Obfuscation happens
// in the prompt rather than programmatically so the withheld set varies
// organically between runs.
type FormGenerator struct {
	client anthropic.Client
	role   config.RoleConfig
}

// NewFormGenerator returns a form generator for the given role.
func NewFormGenerator(client anthropic.Client, role config.RoleConfig) *FormGenerator {
	return &FormGenerator{client: client, role: role}
}

// Generate produces a ground-truth record conforming to the schema, with
// 10-30% of fields set to the missing marker (never inside list items).
func (g *FormGenerator) Generate(ctx context.Context, schema map[string]any) (record.Record, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(
		"You are a financial advisor that has had an interview with a client and "+
			"needs to fill in the 'Fact Find' form. Please fill in the form as given "+
			"in the JSON schema below with varied and random, but plausible financial "+
			"client information that is likely to occur in a real-life scenario. Be "+
			"creative. Please, when quoting money, don't put currencies, but just "+
			"provide the numbers as a string.\n\nJSON schema:\n%s\n\n"+
			"Please mark some of the fields (between 10-30%% of all fields) for "+
			"filling in as '%s' at random and avoid adding %s in list item fields. "+
			"Please only output the JSON dictionary.",
		schemaJSON, record.MissingMarker, record.MissingMarker,
	)
	text, err := complete(ctx, g.client, g.role, "form", prompt)
	if err != nil {
		return nil, err
	}
	return parseRecord(text)
}
