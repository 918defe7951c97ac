package parser

import "strings"

// ScanSection isolates the contiguous run of lines associated with one
// repeating entity (supplier or line-item block). The section opens at the
// first line containing any section keyword (case-insensitive substring) and
// collects every subsequent line, case preserved, until maxLines lines have
// been gathered or the text ends. maxLines <= 0 means unbounded.
//
// The section deliberately never closes before the cap: the source documents
// carry no OCR-recognizable closing delimiter, so unrelated text between an
// early keyword hit and the intended block is accepted as noise. Closing on
// blank-line runs would be more accurate but changes reference outputs.
func ScanSection(lines []string, sectionKeywords []string, maxLines int) []string {
	var section []string
	active := false

	for _, line := range lines {
		if !active {
			folded := strings.ToLower(line)
			for _, keyword := range sectionKeywords {
				if strings.Contains(folded, strings.ToLower(keyword)) {
					active = true
					break
				}
			}
		}
		if !active {
			continue
		}
		section = append(section, line)
		if maxLines > 0 && len(section) >= maxLines {
			break
		}
	}
	return section
}

// extractInSection is the single-line variant used inside scanned sections.
// It matches keywords on the folded lines and returns the trailing segment of
// the matched line or, when that is empty, the immediately following line;
// there is no multi-line lookahead. Values come back lower-cased because the section
// text is folded before matching, mirroring the reference outputs.
func extractInSection(lines []string, keywords []string) string {
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
			if value := trailingSegment(line, kw); value != "" {
				return CleanText(value)
			}
			if i+1 < len(folded) {
				return CleanText(folded[i+1])
			}
		}
	}
	return ""
}
