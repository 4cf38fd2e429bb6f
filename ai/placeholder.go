package ai

import (
	"context"
	"strings"
)

// Placeholder returns canned SQL for development and demos without an API
// key. It is registered like any other provider under type "placeholder".
type Placeholder struct{}

var _ Provider = (*Placeholder)(nil)

// NewPlaceholder creates the placeholder provider.
func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Name() string {
	return "Placeholder"
}

func (p *Placeholder) TestConnectivity(ctx context.Context) error {
	return nil
}

func (p *Placeholder) Generate(ctx context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "reply with exactly"):
		return "OK", nil
	case strings.Contains(lower, "insert") || strings.Contains(lower, "update") || strings.Contains(lower, "delete"):
		return "```sql\nUPDATE placeholder SET touched = true WHERE id = 0\n```", nil
	case strings.Contains(lower, "create") || strings.Contains(lower, "alter") || strings.Contains(lower, "drop"):
		return "```sql\nCREATE OR REPLACE VIEW placeholder_view AS SELECT 1 AS one\n```", nil
	default:
		return "```sql\nSELECT 'placeholder provider: configure a real LLM in askdb.yaml' AS hint\n```", nil
	}
}
