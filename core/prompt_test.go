package core

import (
	"strings"
	"testing"
)

func TestBuildPromptContainsAllSections(t *testing.T) {
	prompt := BuildPrompt(ModeSQL, "shop", "TABLE users\n  id integer", "top customers by revenue")

	for _, want := range []string{
		"SELECT",
		"Database: shop",
		"Schema:",
		"TABLE users",
		"Request: top customers by revenue",
		"```sql",
		"Do not execute it.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptModeInstructions(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeSQL, "ONLY a SELECT query"},
		{ModeDDL, "CREATE OR REPLACE VIEW"},
		{ModeCRUD, "WHERE clauses"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			prompt := BuildPrompt(tt.mode, "db", "", "question")
			if !strings.Contains(prompt, tt.want) {
				t.Errorf("mode %s prompt missing %q", tt.mode, tt.want)
			}
		})
	}
}

func TestBuildPromptSkipsEmptySchema(t *testing.T) {
	prompt := BuildPrompt(ModeSQL, "db", "", "question")
	if strings.Contains(prompt, "Schema:") {
		t.Error("empty schema should omit the Schema section")
	}
}
