package core

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"sql", ModeSQL, false},
		{"ddl", ModeDDL, false},
		{"crud", ModeCRUD, false},
		{"SQL", ModeSQL, false},
		{"  crud  ", ModeCRUD, false},
		{"select", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyInlineMarker(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		sessionMode  Mode
		wantQuestion string
		wantMode     Mode
	}{
		{"no marker keeps session mode", "list all users", ModeSQL, "list all users", ModeSQL},
		{"ddl marker overrides", "@ddl create a view of active users", ModeSQL, "create a view of active users", ModeDDL},
		{"crud marker overrides", "@crud delete stale sessions", ModeSQL, "delete stale sessions", ModeCRUD},
		{"sql marker overrides crud session", "@sql how many orders", ModeCRUD, "how many orders", ModeSQL},
		{"marker is case-insensitive", "@DDL add an index", ModeSQL, "add an index", ModeDDL},
		{"marker alone yields empty question", "@crud", ModeSQL, "", ModeCRUD},
		{"mid-sentence at-word is not a marker", "email users @sql dot com", ModeSQL, "email users @sql dot com", ModeSQL},
		{"whitespace trimmed", "   @sql   top customers  ", ModeDDL, "top customers", ModeSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question, mode := Classify(tt.raw, tt.sessionMode)
			if question != tt.wantQuestion {
				t.Errorf("question = %q, want %q", question, tt.wantQuestion)
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", mode, tt.wantMode)
			}
		})
	}
}
