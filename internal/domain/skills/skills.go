// Package skills extracts skill tags from free text and evidence metadata.
//
// Extraction is a pure heuristic: no I/O, no external calls, and it must be
// safe on arbitrary user-supplied input. Empty input yields an empty list,
// never an error.
package skills

import (
	"path"
	"strings"
	"unicode"

	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// maxSkills caps the merged tag list.
const maxSkills = 15

// vocabEntry pairs a lowercase keyword matched as a substring with its
// canonical display form.
type vocabEntry struct {
	keyword   string
	canonical string
}

// vocabulary is scanned in order so extraction output is deterministic.
// Longer phrases come before their substrings.
var vocabulary = []vocabEntry{
	{"sql injection", "SQL Injection"},
	{"web security", "Web Security"},
	{"penetration testing", "Penetration Testing"},
	{"reverse engineering", "Reverse Engineering"},
	{"incident response", "Incident Response"},
	{"machine learning", "Machine Learning"},
	{"data analysis", "Data Analysis"},
	{"api design", "API Design"},
	{"python", "Python"},
	{"golang", "Go"},
	{"javascript", "JavaScript"},
	{"typescript", "TypeScript"},
	{"react", "React"},
	{"docker", "Docker"},
	{"kubernetes", "Kubernetes"},
	{"linux", "Linux"},
	{"networking", "Networking"},
	{"sql", "SQL"},
	{"cryptography", "Cryptography"},
	{"forensics", "Forensics"},
	{"osint", "OSINT"},
	{"cloud", "Cloud"},
	{"aws", "AWS"},
	{"terraform", "Terraform"},
	{"git", "Git"},
}

// canonicalFor returns the display form for a known keyword.
func canonicalFor(key string) (string, bool) {
	for _, v := range vocabulary {
		if v.keyword == key {
			return v.canonical, true
		}
	}
	return "", false
}

// labelKeys are the "label: value" prefixes whose values are treated as
// skill lists.
var labelKeys = map[string]bool{
	"skill":      true,
	"skills":     true,
	"language":   true,
	"languages":  true,
	"tool":       true,
	"tools":      true,
	"tech":       true,
	"stack":      true,
	"technology": true,
}

// extLanguages maps evidence file extensions to language tags.
var extLanguages = map[string]string{
	".py":    "Python",
	".go":    "Go",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".rs":    "Rust",
	".java":  "Java",
	".rb":    "Ruby",
	".c":     "C",
	".cpp":   "C++",
	".cs":    "C#",
	".sh":    "Shell",
	".sql":   "SQL",
	".tf":    "Terraform",
	".ipynb": "Python",
}

// Extract merges explicitly assigned tags with skills inferred from free
// text and evidence files. The result is de-duplicated case-insensitively,
// capitalized, and capped at 15 entries. Explicit tags win ordering.
func Extract(text string, evidence []model.EvidenceFile, explicit []string) []string {
	out := make([]string, 0, maxSkills)
	seen := make(map[string]bool)

	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || len(out) >= maxSkills {
			return
		}
		if canonical, ok := canonicalFor(strings.ToLower(tag)); ok {
			tag = canonical
		} else {
			tag = capitalize(tag)
		}
		if seen[strings.ToLower(tag)] {
			return
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}

	for _, t := range explicit {
		add(t)
	}

	lower := strings.ToLower(text)
	for _, v := range vocabulary {
		if strings.Contains(lower, v.keyword) {
			add(v.canonical)
		}
	}

	for _, tag := range hashtags(text) {
		add(tag)
	}
	for _, tag := range labelValues(text) {
		add(tag)
	}
	for _, f := range evidence {
		ext := strings.ToLower(path.Ext(f.Name))
		if ext == "" {
			ext = strings.ToLower(path.Ext(f.URL))
		}
		if lang, ok := extLanguages[ext]; ok {
			add(lang)
		}
	}

	return out
}

// hashtags collects #token occurrences from text.
func hashtags(text string) []string {
	var tags []string
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == ';'
	})
	for _, f := range fields {
		if len(f) > 1 && f[0] == '#' {
			tag := strings.TrimFunc(f[1:], func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '+'
			})
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// labelValues collects comma-separated values from "label: value" lines
// whose label is a known skill key.
func labelValues(text string) []string {
	var tags []string
	for _, line := range strings.Split(text, "\n") {
		label, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !labelKeys[strings.ToLower(strings.TrimSpace(label))] {
			continue
		}
		for _, v := range strings.Split(rest, ",") {
			if v = strings.TrimSpace(v); v != "" {
				tags = append(tags, v)
			}
		}
	}
	return tags
}

// capitalize upper-cases the first letter of each word, leaving the rest of
// the word alone so tags like "iOS" survive.
func capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
