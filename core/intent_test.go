package core

import (
	"testing"

	"github.com/askdb/askdb/config"
)

func TestMatchesIntent(t *testing.T) {
	keywords := config.DefaultIntentKeywords

	tests := []struct {
		question string
		want     bool
	}{
		{"show me the top customers", true},
		{"SHOW ME the top customers", true},
		{"how many orders were placed today", true},
		{"list active sessions", true},
		{"join orders with customers", false},
		{"which products sell best", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := matchesIntent(tt.question, keywords); got != tt.want {
				t.Errorf("matchesIntent(%q) = %v, want %v", tt.question, got, tt.want)
			}
		})
	}
}

func TestMatchesIntentCustomKeywords(t *testing.T) {
	if !matchesIntent("bitte zeige alle Kunden", []string{"zeige"}) {
		t.Error("custom keyword should match")
	}
	if matchesIntent("show me everything", []string{"zeige"}) {
		t.Error("default keywords should not apply when overridden")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		question string
		want     OutputFormat
	}{
		{"export active users to csv", FormatCSV},
		{"save csv of last month's orders", FormatCSV},
		{"give me revenue as a markdown table", FormatMarkdown},
		{"list users as markdown", FormatMarkdown},
		{"show me the top customers", FormatTable},
		// CSV wins when both appear.
		{"as csv, not a markdown table", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := detectFormat(tt.question); got != tt.want {
				t.Errorf("detectFormat(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}
