package validator

import (
	"fmt"
	"strings"
)

// FormatViolations renders a result as the numbered list the CLI prints.
// Returns the empty string when the result is valid.
func FormatViolations(result Result) string {
	if result.Valid {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation failed: %d violation(s)\n", len(result.Errors)))
	for i, v := range result.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, v.Message))
	}
	return sb.String()
}

// Messages returns just the human-readable messages, in order.
func Messages(result Result) []string {
	msgs := make([]string, len(result.Errors))
	for i, v := range result.Errors {
		msgs[i] = v.Message
	}
	return msgs
}
