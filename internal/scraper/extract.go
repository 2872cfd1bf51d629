package scraper

import (
	"regexp"
	"sort"
	"strings"
)

type skillPattern struct {
	name string
	re   *regexp.Regexp
}

// Extractor matches taxonomy skill names against posting text. Matching
// is whole-word and case-insensitive so "Welding" hits "arc welding" but
// "Plumbing" stays clear of "plumbingworks".
type Extractor struct {
	patterns []skillPattern
}

// NewExtractor compiles one pattern per taxonomy skill. Blank and
// duplicate names are skipped.
func NewExtractor(skills []string) *Extractor {
	e := &Extractor{patterns: make([]skillPattern, 0, len(skills))}
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		name := strings.TrimSpace(s)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pat := `(?i)(^|[^a-z0-9])` + regexp.QuoteMeta(key) + `([^a-z0-9]|$)`
		e.patterns = append(e.patterns, skillPattern{name: name, re: regexp.MustCompile(pat)})
	}
	return e
}

// Size reports how many skills the extractor knows.
func (e *Extractor) Size() int {
	if e == nil {
		return 0
	}
	return len(e.patterns)
}

// Extract returns the requirements mentioned in text, ordered by skill
// name. Mention frequency sets the trust bar: a skill the posting keeps
// repeating is central to the role.
func (e *Extractor) Extract(text string) []Requirement {
	if e == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var out []Requirement
	for _, p := range e.patterns {
		n := len(p.re.FindAllStringIndex(lower, -1))
		if n == 0 {
			continue
		}
		out = append(out, Requirement{Skill: p.name, MinTrust: minTrustFromMentions(n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Skill < out[j].Skill })
	return out
}

func minTrustFromMentions(count int) float64 {
	switch {
	case count >= 4:
		return 60
	case count == 3:
		return 50
	case count == 2:
		return 40
	default:
		return 0
	}
}
