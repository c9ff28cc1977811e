package domain

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fairyhunter13/ai-mock-interview/pkg/textx"
)

// CVSections maps a section label such as "EXPERIENCE" to its newline-joined text.
type CVSections map[string]string

// KnownSections is the allow-list of recognised CV headings, in display order.
var KnownSections = []string{
	"SUMMARY",
	"EXPERIENCE",
	"WORK EXPERIENCE",
	"PROJECT EXPERIENCE",
	"PROJECTS",
	"EDUCATION",
	"SKILLS",
	"SKILLS & INTERESTS",
	"CERTIFICATIONS",
}

// IgnoredSections close the current section and drop everything under them.
var IgnoredSections = []string{"REFERENCES", "CONTACT", "PAGE", "ADDRESS"}

var (
	headerPattern = regexp.MustCompile(`^[A-Z\s&]+$`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

func isHeader(line string) bool {
	return headerPattern.MatchString(line) && !digitPattern.MatchString(line)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParseSections classifies extracted CV lines into labelled sections.
// All-caps lines without digits are headings: known ones and unknown ones open a
// section, ignored ones close it. Other lines are trimmed and appended to the open
// section or dropped when none is open. Misclassified all-caps lines are accepted.
func ParseSections(text string) CVSections {
	sections := CVSections{}
	lines := map[string][]string{}
	current := ""

	for _, raw := range strings.Split(textx.NormalizeNewlines(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if isHeader(line) {
			if contains(IgnoredSections, line) {
				current = ""
				continue
			}
			current = line
			lines[current] = nil
			sections[current] = ""
			continue
		}
		if current == "" {
			continue
		}
		lines[current] = append(lines[current], line)
	}

	for k, v := range lines {
		sections[k] = strings.Join(v, "\n")
	}
	return sections
}

// Keys returns the section labels with known sections first in KnownSections order,
// followed by ad hoc labels sorted alphabetically.
func (s CVSections) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, k := range KnownSections {
		if _, ok := s[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range s {
		if !contains(KnownSections, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Format renders the sections as "LABEL:\ntext" blocks separated by blank lines.
func (s CVSections) Format() string {
	var b strings.Builder
	for _, k := range s.Keys() {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(k)
		b.WriteString(":\n")
		b.WriteString(s[k])
	}
	return b.String()
}
