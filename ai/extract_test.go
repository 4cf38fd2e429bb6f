package ai

import "testing"

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"sql fence",
			"Here you go:\n```sql\nSELECT * FROM users;\n```\nLet me know!",
			"SELECT * FROM users;",
		},
		{
			"fence without language tag",
			"```\nSELECT id FROM orders;\n```",
			"SELECT id FROM orders;",
		},
		{
			"bare statement in prose",
			"You can run SELECT count(*) FROM users; to get the total.",
			"SELECT count(*) FROM users;",
		},
		{
			"bare statement without semicolon gets one",
			"UPDATE users SET active = false WHERE last_seen < '2025-01-01'",
			"UPDATE users SET active = false WHERE last_seen < '2025-01-01';",
		},
		{
			"ddl fence",
			"```sql\nCREATE OR REPLACE VIEW v AS SELECT 1;\n```",
			"CREATE OR REPLACE VIEW v AS SELECT 1;",
		},
		{
			"no sql falls back to raw text",
			"I could not find a relevant table for that question.",
			"I could not find a relevant table for that question.",
		},
		{
			"empty",
			"   ",
			"",
		},
		{
			"first fence wins over later prose sql",
			"```sql\nSELECT 1;\n```\nAlternatively SELECT 2; works too.",
			"SELECT 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSQL(tt.in); got != tt.want {
				t.Errorf("ExtractSQL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
