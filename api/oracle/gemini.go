// api/oracle/gemini.go
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	arbiter_errors "github.com/dev-mohitbeniwal/arbiter/api/errors"
)

// GeminiOracle delegates rule interpretation to a Gemini model. It implements
// both Oracle and Reviewer; the oversight pass may use a different model name
// on a second instance.
type GeminiOracle struct {
	client *genai.Client
	model  string
}

func NewGeminiOracle(ctx context.Context, apiKey, model string) (*GeminiOracle, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiOracle{client: client, model: model}, nil
}

// Close releases the underlying client.
func (o *GeminiOracle) Close() error {
	return o.client.Close()
}

func (o *GeminiOracle) Evaluate(ctx context.Context, req *Request) (*Response, error) {
	text, err := o.generate(ctx, buildEvaluationPrompt(req))
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", arbiter_errors.ErrOracleSchema, err)
	}
	return &resp, nil
}

func (o *GeminiOracle) Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error) {
	text, err := o.generate(ctx, buildReviewPrompt(req))
	if err != nil {
		return nil, err
	}
	var resp ReviewResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", arbiter_errors.ErrOracleSchema, err)
	}
	return &resp, nil
}

func (o *GeminiOracle) generate(ctx context.Context, prompt string) (string, error) {
	m := o.client.GenerativeModel(o.model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("oracle call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty candidate list", arbiter_errors.ErrOracleSchema)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts in response", arbiter_errors.ErrOracleSchema)
	}
	return b.String(), nil
}

// extractJSON trims markdown fences some models wrap around JSON output.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}
