package eval

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hartfield-labs/factfind/internal/resilience"
	"github.com/hartfield-labs/factfind/pkg/anthropic"
)

// LLMOracle answers equivalence questions with a single YES/NO model call
// at temperature 0. Transient API failures are retried; a final failure or
// an unparseable reply surfaces as an error, which the comparator treats
// as "no match".
type LLMOracle struct {
	client anthropic.Client
	model  string
	retry  resilience.RetryConfig
}

// NewLLMOracle returns an oracle backed by the given client and model.
func NewLLMOracle(client anthropic.Client, model string) *LLMOracle {
	return &LLMOracle{
		client: client,
		model:  model,
		retry:  resilience.DefaultRetryConfig(),
	}
}

const oraclePromptTemplate = `Compare these two values and determine if they convey the same, or very similar, client information in a financial context.
Value 1: %q
Value 2: %q

Only respond with YES if they convey the same, or very similar, client information (ignoring formatting, spelling variations, and minor wording differences), or NO if they have different meanings. Just respond with YES or NO.`

// Equivalent implements Oracle.
func (o *LLMOracle) Equivalent(ctx context.Context, a, b string) (bool, error) {
	temp := 0.0
	resp, err := resilience.DoVal(ctx, o.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return o.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       o.model,
			MaxTokens:   8,
			Temperature: &temp,
			Messages: []anthropic.Message{
				{Role: "user", Content: fmt.Sprintf(oraclePromptTemplate, a, b)},
			},
		})
	})
	if err != nil {
		return false, eris.Wrap(err, "oracle: equivalence call")
	}

	reply := strings.ToLower(strings.TrimSpace(resp.Text))
	switch {
	case strings.Contains(reply, "yes"):
		return true, nil
	case strings.Contains(reply, "no"):
		return false, nil
	default:
		return false, eris.Errorf("oracle: unexpected reply %q", resp.Text)
	}
}
