package core

import (
	"fmt"
	"strings"
)

// Per-mode generation instructions. The mode decides what family of SQL the
// model may produce; everything else comes from the schema context.
var modeInstructions = map[Mode]string{
	ModeSQL: "Generate ONLY a SELECT query. Do not generate INSERT, UPDATE, " +
		"DELETE, or DDL statements.",
	ModeDDL: "Generate ONLY DDL statements (CREATE VIEW, CREATE TABLE, ALTER, DROP). " +
		"Prefer CREATE OR REPLACE VIEW when defining views so repeated runs are safe.",
	ModeCRUD: "Generate ONLY an INSERT, UPDATE, or DELETE statement. " +
		"CRITICAL: Always include appropriate WHERE clauses on UPDATE and DELETE.",
}

const promptFooter = "Return the SQL in a ```sql code block. Do not execute it."

// BuildPrompt assembles the user prompt sent to the LLM: mode instruction,
// database name, flattened schema, then the question.
func BuildPrompt(mode Mode, database, schemaText, question string) string {
	var b strings.Builder
	b.WriteString(modeInstructions[mode])
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Database: %s\n\n", database)
	if schemaText != "" {
		b.WriteString("Schema:\n")
		b.WriteString(schemaText)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Request: %s\n\n", question)
	b.WriteString(promptFooter)
	return b.String()
}
