package utils

import "strings"

// EscapeCSVField quotes a value that contains a comma, quote, CR or LF and
// doubles any embedded quotes. Other values are returned unchanged.
func EscapeCSVField(value string) string {
	if !strings.ContainsAny(value, ",\"\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// JoinCSVRow escapes and joins one record, without a line terminator.
func JoinCSVRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeCSVField(f)
	}
	return strings.Join(escaped, ",")
}
