package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/askdb/askdb/db"
)

// Detail levels for schema flattening, richest first. When the flattened
// text exceeds the character budget, detail is shed stage by stage rather
// than cutting tables off mid-stream.
const (
	detailFull      = iota // columns, defaults, foreign keys, indexes
	detailNoIndexes        // drop index definitions
	detailColumns          // columns and types only
	detailNames            // table names only
)

// FlattenSchema renders a schema as compact text for prompt context,
// honoring the character budget. Returns the text and whether detail was
// reduced to fit.
func FlattenSchema(schema *db.Schema, budget int) (string, bool) {
	for level := detailFull; level <= detailNames; level++ {
		text := renderSchema(schema, level)
		if budget <= 0 || len(text) <= budget {
			return text, level != detailFull
		}
	}
	// Even the table-name list is over budget: hard cut at a line boundary.
	text := renderSchema(schema, detailNames)
	cut := text[:budget]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		return cut[:idx], true
	}
	// No complete line fits; drop any trailing partial rune from the cut.
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut, true
}

func renderSchema(schema *db.Schema, level int) string {
	var b strings.Builder
	for i, t := range schema.Tables {
		if i > 0 {
			b.WriteByte('\n')
		}
		renderTable(&b, t, level)
	}
	return b.String()
}

func renderTable(b *strings.Builder, t db.Table, level int) {
	if level >= detailNames {
		fmt.Fprintf(b, "TABLE %s\n", t.Name)
		return
	}

	fmt.Fprintf(b, "TABLE %s\n", t.Name)
	for _, c := range t.Columns {
		b.WriteString("  ")
		b.WriteString(c.Name)
		b.WriteByte(' ')
		b.WriteString(c.DataType)
		if level < detailColumns {
			if !c.Nullable {
				b.WriteString(" NOT NULL")
			}
			if c.PrimaryKey {
				b.WriteString(" [PK]")
			}
			if c.Default != "" {
				fmt.Fprintf(b, " DEFAULT %s", c.Default)
			}
		}
		b.WriteByte('\n')
	}
	if level < detailColumns {
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(b, "  FK: %s -> %s.%s\n", fk.Column, fk.RefTable, fk.RefColumn)
		}
	}
	if level < detailNoIndexes {
		for _, idx := range t.Indexes {
			fmt.Fprintf(b, "  INDEX %s: %s\n", idx.Name, idx.Definition)
		}
	}
}
