package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hartfield-labs/factfind/internal/config"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/pkg/anthropic"
)

// ConversationGenerator renders a ground-truth record into a naturalistic
// advisor/client dialogue. Fields stripped as missing must not surface in
// the rendered conversation; the client should deflect when asked.
type ConversationGenerator struct {
	client anthropic.Client
	role   config.RoleConfig
}

// NewConversationGenerator returns a conversation generator for the role.
func NewConversationGenerator(client anthropic.Client, role config.RoleConfig) *ConversationGenerator {
	return &ConversationGenerator{client: client, role: role}
}

// Generate strips the marker fields from the ground truth and renders the
// remaining facts as a free-form onboarding conversation.
func (g *ConversationGenerator) Generate(ctx context.Context, groundTruth record.Record) (string, error) {
	cleaned, missingPaths := record.StripMissing(groundTruth)

	factsJSON, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return "", err
	}

	var withheld string
	if len(missingPaths) > 0 {
		withheld = fmt.Sprintf(
			"\n\nThe client does not know or declines to share the following "+
				"fields; they must not state them anywhere in the conversation, and "+
				"should deflect naturally if asked:\n- %s",
			strings.Join(missingPaths, "\n- "),
		)
	}

	prompt := fmt.Sprintf(
		"Please write a natural, free-form conversation between a financial "+
			"advisor and a client during a fact-finding onboarding interview. The "+
			"conversation should organically cover all of the client information "+
			"below, with realistic small talk, follow-up questions and varied "+
			"phrasing, so that every fact below is mentioned somewhere in the "+
			"dialogue.\n\nClient information:\n%s%s\n\n"+
			"Format each line as 'Advisor:' or 'Client:' followed by the utterance. "+
			"Output only the conversation transcript.",
		factsJSON, withheld,
	)

	return complete(ctx, g.client, g.role, "conversation", prompt)
}
