// Package gradefilter turns free-text grade/semester labels into substring
// match patterns. Stored labels come from years of clients with different
// spellings ("七年级" / "初一" / "7年级" / "七", semesters joined with nothing,
// fullwidth or halfwidth commas, spaces, or a trailing "期"), so a lookup by a
// single spelling misses real data. Build expands a label into every pattern
// any legacy spelling would contain.
package gradefilter

import (
	"regexp"
	"strings"
)

type Filter struct {
	Raw      string
	Grade    string // canonical grade bucket, "" when unrecognized
	Semester string // "上", "下", or ""
	Patterns []string
}

type bucket struct {
	name    string
	aliases []string
}

// The six secondary-school grade buckets. Alias order does not matter; every
// alias is expanded into every separator variant.
var buckets = []bucket{
	{"七年级", []string{"七年级", "初一", "7年级", "七"}},
	{"八年级", []string{"八年级", "初二", "8年级", "八"}},
	{"九年级", []string{"九年级", "初三", "9年级", "九"}},
	{"高一", []string{"高一", "高中一年级", "高1"}},
	{"高二", []string{"高二", "高中二年级", "高2"}},
	{"高三", []string{"高三", "高中三年级", "高3"}},
}

// Separators observed between grade and semester in stored labels.
var separators = []string{"", "，", ",", "、", " "}

var genericGrade = regexp.MustCompile(`([一二三四五六七八九十0-9]+年级)`)

// Build expands a raw grade/semester label into match patterns. An empty label
// yields no patterns; an unrecognized one falls back to a single substring
// match on the raw text.
func Build(raw string) *Filter {
	f := &Filter{Raw: strings.TrimSpace(raw)}
	if f.Raw == "" {
		return f
	}

	if strings.Contains(f.Raw, "上") {
		f.Semester = "上"
	} else if strings.Contains(f.Raw, "下") {
		f.Semester = "下"
	}

	var aliases []string
	for _, b := range buckets {
		for _, a := range b.aliases {
			if strings.Contains(f.Raw, a) {
				f.Grade = b.name
				aliases = b.aliases
				break
			}
		}
		if f.Grade != "" {
			break
		}
	}

	if f.Grade == "" {
		// Unknown bucket: a semester-less "X年级" form still names a grade.
		if m := genericGrade.FindString(f.Raw); m != "" {
			f.Grade = m
			aliases = []string{m}
		} else {
			f.Patterns = []string{f.Raw}
			return f
		}
	}

	if f.Semester == "" {
		f.Patterns = append(f.Patterns, aliases...)
		return f
	}
	seen := make(map[string]bool)
	for _, a := range aliases {
		for _, sep := range separators {
			p := a + sep + f.Semester
			if !seen[p] {
				seen[p] = true
				f.Patterns = append(f.Patterns, p)
			}
		}
	}
	return f
}

// Matches reports whether a stored label matches any pattern. Query paths use
// the patterns as LIKE predicates; this is the same check in memory.
func (f *Filter) Matches(label string) bool {
	for _, p := range f.Patterns {
		if strings.Contains(label, p) {
			return true
		}
	}
	return false
}
