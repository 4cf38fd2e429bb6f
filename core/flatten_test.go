package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/askdb/askdb/db"
)

func sampleSchema() *db.Schema {
	return &db.Schema{
		Database: "shop",
		Tables: []db.Table{
			{
				Name: "users",
				Columns: []db.Column{
					{Name: "id", DataType: "integer", PrimaryKey: true},
					{Name: "email", DataType: "text", Nullable: true},
					{Name: "created_at", DataType: "timestamptz", Default: "now()"},
				},
				Indexes: []db.Index{
					{Name: "users_email_idx", Definition: "CREATE UNIQUE INDEX users_email_idx ON users (email)"},
				},
			},
			{
				Name: "orders",
				Columns: []db.Column{
					{Name: "id", DataType: "integer", PrimaryKey: true},
					{Name: "user_id", DataType: "integer"},
				},
				ForeignKeys: []db.ForeignKey{
					{Column: "user_id", RefTable: "users", RefColumn: "id"},
				},
			},
		},
	}
}

func TestFlattenSchemaFullDetail(t *testing.T) {
	text, reduced := FlattenSchema(sampleSchema(), 0)
	if reduced {
		t.Error("unlimited budget should not reduce detail")
	}
	for _, want := range []string{
		"TABLE users",
		"id integer NOT NULL [PK]",
		"email text",
		"DEFAULT now()",
		"FK: user_id -> users.id",
		"INDEX users_email_idx",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("flattened schema missing %q:\n%s", want, text)
		}
	}
}

func TestFlattenSchemaShedsDetailUnderBudget(t *testing.T) {
	full, _ := FlattenSchema(sampleSchema(), 0)

	text, reduced := FlattenSchema(sampleSchema(), len(full)-1)
	if !reduced {
		t.Error("expected reduced detail under a tight budget")
	}
	if len(text) > len(full)-1 {
		t.Errorf("flattened text %d chars exceeds budget %d", len(text), len(full)-1)
	}
	if !strings.Contains(text, "TABLE users") || !strings.Contains(text, "TABLE orders") {
		t.Errorf("tables should survive budget reduction:\n%s", text)
	}
	if strings.Contains(text, "INDEX") {
		t.Error("indexes should be shed first")
	}
}

func TestFlattenSchemaTinyBudgetKeepsLineBoundary(t *testing.T) {
	text, reduced := FlattenSchema(sampleSchema(), 15)
	if !reduced {
		t.Error("expected reduction")
	}
	if len(text) > 15 {
		t.Errorf("text %d chars exceeds budget 15", len(text))
	}
	if !strings.Contains(text, "TABLE users") {
		t.Errorf("first table name should survive the cut: %q", text)
	}
}

func TestFlattenSchemaHardCutKeepsRuneBoundary(t *testing.T) {
	schema := &db.Schema{Tables: []db.Table{{Name: "ürün_kayıtları"}}}

	// Budgets that land inside the multi-byte runes of the only line.
	for budget := 7; budget <= 12; budget++ {
		text, reduced := FlattenSchema(schema, budget)
		if !reduced {
			t.Errorf("budget %d: expected reduction", budget)
		}
		if len(text) > budget {
			t.Errorf("budget %d: text is %d bytes", budget, len(text))
		}
		if !utf8.ValidString(text) {
			t.Errorf("budget %d: cut split a rune: %q", budget, text)
		}
	}
}
