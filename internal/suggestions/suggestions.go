// Package suggestions matches loosely typed grinder names against the grinder
// table. It backs grinder search and the "did you mean" hints on unknown
// grinder replies.
package suggestions

import (
	"regexp"
	"sort"
	"strings"

	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/models"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 10

// GrinderSuggestion is one grinder matching a search query.
type GrinderSuggestion struct {
	Name    string          `json:"name"`
	Methods []models.Method `json:"methods"`
	Units   []string        `json:"units"`
}

// ProfileSource lists the grinder table. *grinder.Registry satisfies it.
type ProfileSource interface {
	List() []grinder.Profile
}

// Profiles is a fixed snapshot of the grinder table.
type Profiles []grinder.Profile

func (p Profiles) List() []grinder.Profile { return p }

// Common suffixes stripped during fuzzy name normalization.
// Order matters: longer suffixes first to avoid partial stripping.
var commonSuffixes = []string{
	"coffee grinder",
	"hand grinder",
	"burr grinder",
	"grinder",
	"mill",
}

// fuzzyName lowercases a grinder name, strips a generic suffix, punctuation
// and extra whitespace, so "Comandante C40 Hand Grinder" and
// "comandante c-40" compare close.
func fuzzyName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	for _, suffix := range commonSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			break // only strip one suffix
		}
	}

	return collapseSpaces(stripPunctuation(s))
}

// normalize lowercases, trims whitespace, and collapses internal whitespace.
func normalize(s string) string {
	return collapseSpaces(strings.ToLower(strings.TrimSpace(s)))
}

var nonAlphanumSpace = regexp.MustCompile(`[^a-z0-9\s]`)

func stripPunctuation(s string) string {
	return nonAlphanumSpace.ReplaceAllString(s, "")
}

var multiSpace = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// compact drops spaces so "c 40" matches "c40".
func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// Search returns grinders whose name, methods or dial units match query.
// A name matches when it contains the query, or when every word of the query
// appears in it ignoring spaces and punctuation. Results are sorted with
// name-prefix matches first, then by the number of methods the grinder
// covers, then alphabetically. Queries shorter than two characters match
// nothing.
func Search(src ProfileSource, query string, limit int) []GrinderSuggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := fuzzyName(query)
	if len(q) < 2 {
		return nil
	}
	words := strings.Fields(q)

	type candidate struct {
		suggestion GrinderSuggestion
		prefix     bool
	}
	candidates := make(map[string]*candidate)

	for _, p := range src.List() {
		name := fuzzyName(p.Name)
		if name == "" {
			continue
		}

		if !nameMatches(name, q, words) && !fieldMatches(p, q) {
			continue
		}

		// Profiles that differ only by a generic suffix collapse into one;
		// the first name alphabetically wins.
		key := compact(name)
		if existing, ok := candidates[key]; ok && existing.suggestion.Name < p.Name {
			continue
		}
		candidates[key] = &candidate{
			suggestion: newSuggestion(p),
			prefix:     strings.HasPrefix(name, q) || strings.HasPrefix(compact(name), compact(q)),
		}
	}

	results := make([]*candidate, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, c)
	}

	// Sort: prefix matches first, then by method count desc, then alphabetically
	sort.Slice(results, func(i, j int) bool {
		if results[i].prefix != results[j].prefix {
			return results[i].prefix
		}
		mi, mj := len(results[i].suggestion.Methods), len(results[j].suggestion.Methods)
		if mi != mj {
			return mi > mj
		}
		return strings.ToLower(results[i].suggestion.Name) < strings.ToLower(results[j].suggestion.Name)
	})

	if len(results) > limit {
		results = results[:limit]
	}

	out := make([]GrinderSuggestion, len(results))
	for i, c := range results {
		out[i] = c.suggestion
	}
	return out
}

// Names returns just the names of Search's results.
func Names(src ProfileSource, query string, limit int) []string {
	results := Search(src, query, limit)
	if len(results) == 0 {
		return nil
	}
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}

// Filter returns the profiles matching query, best match first. Matching runs
// over profiles only, so the result is consistent with that one snapshot.
func Filter(profiles []grinder.Profile, query string, limit int) []grinder.Profile {
	byName := make(map[string]grinder.Profile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}

	matches := Search(Profiles(profiles), query, limit)
	out := make([]grinder.Profile, 0, len(matches))
	for _, m := range matches {
		out = append(out, byName[m.Name])
	}
	return out
}

func nameMatches(name, q string, words []string) bool {
	if strings.Contains(name, q) {
		return true
	}
	c := compact(name)
	for _, w := range words {
		if !strings.Contains(c, w) {
			return false
		}
	}
	return true
}

func fieldMatches(p grinder.Profile, q string) bool {
	for m, r := range p.Methods {
		if strings.Contains(fuzzyName(m.String()), q) || strings.Contains(fuzzyName(m.DisplayName()), q) {
			return true
		}
		if normalize(r.Unit) == q {
			return true
		}
	}
	return false
}

func newSuggestion(p grinder.Profile) GrinderSuggestion {
	s := GrinderSuggestion{Name: p.Name}
	seenUnit := make(map[string]struct{})
	for _, m := range models.Methods {
		r, ok := p.Methods[m]
		if !ok {
			continue
		}
		s.Methods = append(s.Methods, m)
		if _, dup := seenUnit[r.Unit]; !dup {
			seenUnit[r.Unit] = struct{}{}
			s.Units = append(s.Units, r.Unit)
		}
	}
	return s
}
