package parser

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace to a single space and trims the ends.
func CleanText(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ExtractField locates a single labeled value in text. Lines are scanned in
// order and each keyword is tested as a case-folded substring. On the first
// matching line i:
//
//  1. Lines i..i+contextLines are checked for the first non-empty line whose
//     trimmed content differs from the matched line; that line is returned
//     cleaned, case preserved.
//  2. Otherwise the matched line is split on the keyword and the trailing
//     segment returned cleaned. Matching happens on the folded line, so this
//     fallback comes back lower-cased.
//
// If neither step yields a value the scan continues; an empty string means no
// keyword matched anywhere. Empty is a normal outcome, not an error.
func ExtractField(lines []string, keywords []string, contextLines int) string {
	folded := make([]string, len(lines))
	for i, line := range lines {
		folded[i] = strings.ToLower(line)
	}

	for i, line := range folded {
		for _, keyword := range keywords {
			kw := strings.ToLower(keyword)
			if !strings.Contains(line, kw) {
				continue
			}

			// Value on the same line or within the lookahead window.
			matched := strings.TrimSpace(line)
			end := i + contextLines
			if end >= len(lines) {
				end = len(lines) - 1
			}
			for j := i; j <= end; j++ {
				candidate := strings.TrimSpace(lines[j])
				if candidate != "" && strings.ToLower(candidate) != matched {
					return CleanText(candidate)
				}
			}

			// Trailing segment after the keyword on the matched line.
			if value := trailingSegment(line, kw); value != "" {
				return CleanText(value)
			}
		}
	}
	return ""
}

// trailingSegment returns what follows the last occurrence of kw on line,
// with the label separator (colon, dash, dot) and surrounding space removed.
func trailingSegment(line, kw string) string {
	parts := strings.Split(line, kw)
	seg := parts[len(parts)-1]
	return strings.TrimSpace(strings.TrimLeft(seg, ":;.,- \t"))
}

// SplitLines splits raw document text into its ordered lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
