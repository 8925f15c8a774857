package query

import (
	"fmt"
	"regexp"
	"strings"
)

var blockedKeywords = regexp.MustCompile(`\b(insert|update|delete|merge|drop|alter|create|truncate|grant|revoke|call|execute|prepare|deallocate|unload|msck)\b`)

// ValidateReadOnly accepts a single SELECT (or WITH ... SELECT) statement with
// no comments. A trailing semicolon is tolerated; any other is rejected.
func ValidateReadOnly(sql string) error {
	s := strings.TrimSpace(sql)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return fmt.Errorf("empty sql")
	}
	low := strings.ToLower(s)
	// Structural checks run on the text outside quotes, so 'a;b' is a value.
	bare := stripQuoted(low)

	if strings.Contains(bare, ";") {
		return fmt.Errorf("multiple statements not allowed")
	}
	if strings.Contains(bare, "--") || strings.Contains(bare, "/*") || strings.Contains(bare, "*/") {
		return fmt.Errorf("comments not allowed")
	}
	if !strings.HasPrefix(low, "select") && !strings.HasPrefix(low, "with") {
		return fmt.Errorf("only SELECT queries are allowed")
	}
	if kw := blockedKeywords.FindString(bare); kw != "" {
		return fmt.Errorf("disallowed keyword: %s", kw)
	}
	return nil
}

var quotedRe = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"`)

// stripQuoted blanks string literals and quoted identifiers so a value like
// 'delete me' does not trip the keyword check.
func stripQuoted(s string) string {
	return quotedRe.ReplaceAllString(s, "''")
}
