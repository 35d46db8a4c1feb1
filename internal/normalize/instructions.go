package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MergeThreshold is the length below which a continuation line is folded
// into the previous step.
const MergeThreshold = 40

var sectionHeaders = map[string]bool{
	"equipment": true, "instructions": true, "method": true, "directions": true, "steps": true,
}

var (
	stepWordMarker = regexp.MustCompile(`(?i)^step\s*\d+\s*[:.)\-]?\s*`)
	stepNumMarker  = regexp.MustCompile(`^\d{1,2}\s*[.):\-](?:\s+|$|(\p{L}))`)
	bareStep       = regexp.MustCompile(`(?i)^(step\s*)?\d+[.)]?$`)
)

// Instructions cleans raw steps. Each raw entry may hold several lines.
// Section headings and step numbering are removed, and lines that continue
// the previous step are joined onto it.
func Instructions(raw []string) []string {
	var lines []string
	for _, block := range raw {
		block = strings.ReplaceAll(block, "\r\n", "\n")
		for _, line := range strings.Split(block, "\n") {
			if l, ok := cleanStep(line); ok {
				lines = append(lines, l)
			}
		}
	}

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if len(out) > 0 && continues(out[len(out)-1], l) {
			out[len(out)-1] += " " + l
			continue
		}
		out = append(out, l)
	}
	return out
}

func cleanStep(line string) (string, bool) {
	l := collapse(line)
	if isSectionHeader(l) {
		return "", false
	}
	l = stepWordMarker.ReplaceAllString(l, "")
	l = stepNumMarker.ReplaceAllString(l, "${1}")
	l = collapse(l)
	if l == "" || bareStep.MatchString(l) || isSectionHeader(l) {
		return "", false
	}
	return l, true
}

func isSectionHeader(l string) bool {
	return sectionHeaders[strings.ToLower(strings.TrimSpace(strings.TrimSuffix(l, ":")))]
}

// continues reports whether line reads as the tail of prev: it must open
// lower-case or with closing punctuation, and either be short or follow a
// step that has no sentence end.
func continues(prev, line string) bool {
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsLower(first) && !strings.ContainsRune(",;)", first) {
		return false
	}
	return utf8.RuneCountInString(line) < MergeThreshold || !endsSentence(prev)
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, `"')]`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
