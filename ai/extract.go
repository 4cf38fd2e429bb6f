// extract.go pulls SQL out of model responses.
//
// Models are instructed to answer with a ```sql fenced block, but responses
// vary: some fence without a language tag, some answer with bare SQL, some
// wrap the statement in narrative. Extraction tries the most specific shape
// first and degrades gracefully; the raw text is the last resort so the
// user can always see what came back.
package ai

import (
	"regexp"
	"strings"
)

var (
	sqlFencePattern = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")
	anyFencePattern = regexp.MustCompile("(?is)```\\s*((?:SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|TRUNCATE|WITH)\\b.*?)\\s*```")
	bareSQLPattern  = regexp.MustCompile(`(?is)\b((?:SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP|TRUNCATE)\b[\s\S]*?)(;|$)`)
)

// ExtractSQL returns the SQL statement contained in a model response.
// If nothing statement-shaped is found, the trimmed response is returned
// unchanged.
func ExtractSQL(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if m := sqlFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := bareSQLPattern.FindStringSubmatch(text); m != nil {
		sql := strings.TrimSpace(m[1])
		if !strings.HasSuffix(sql, ";") {
			sql += ";"
		}
		return sql
	}

	return text
}
