package records

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackSlug is used when no column yields a usable slug.
const FallbackSlug = "item"

var (
	nonSlugRun       = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedHyphens  = regexp.MustCompile(`-{2,}`)
	explicitSlugKeys = []string{"slug", "header_slug", "header-slug", "header slug", "url_slug", "url-slug"}
	nameKeys         = []string{"name", "title"}
)

// StripDiacritics decomposes s (NFD) and drops nonspacing marks along with
// standalone modifier symbols such as ` ^ ¨ ´, so accented letters reduce to
// their base letter. Other characters are returned unchanged.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isDiacritic)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isDiacritic(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Sk)
}

// Slugify lowercases s, strips diacritics, and replaces every run of
// characters outside [a-z0-9] with a single hyphen. Leading and trailing
// hyphens are removed. The result may be empty.
//
//	Slugify("Café & Co.")   // "cafe-co"
//	Slugify("  Acme, Inc ") // "acme-inc"
func Slugify(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	if out == "" {
		return ""
	}
	out = StripDiacritics(out)
	out = nonSlugRun.ReplaceAllString(out, "-")
	out = strings.Trim(out, "-")
	return repeatedHyphens.ReplaceAllString(out, "-")
}

// CandidateSource picks the text a record's slug is derived from: the first
// non-empty explicit slug column, then name, then title, then FallbackSlug.
func CandidateSource(fields map[string]string) string {
	for _, key := range explicitSlugKeys {
		if v := fields[key]; v != "" {
			return v
		}
	}
	for _, key := range nameKeys {
		if v := fields[key]; v != "" {
			return v
		}
	}
	return FallbackSlug
}

// BaseSlug normalizes the candidate source of fields, falling back to
// FallbackSlug when normalization leaves nothing.
func BaseSlug(fields map[string]string) string {
	if s := Slugify(CandidateSource(fields)); s != "" {
		return s
	}
	return FallbackSlug
}

// Registry hands out unique slugs. It is scoped to one build and is not safe
// for concurrent use.
type Registry struct {
	seen map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]int)}
}

// Assign returns base if it has not been handed out yet. Otherwise it bumps
// the counter for base and returns the first free "base-N", skipping suffixed
// slugs that were already registered verbatim.
func (r *Registry) Assign(base string) string {
	count, ok := r.seen[base]
	if !ok {
		r.seen[base] = 1
		return base
	}

	count++
	r.seen[base] = count
	n := count
	for {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := r.seen[candidate]; !taken {
			r.seen[candidate] = 1
			return candidate
		}
		n++
	}
}

// Len reports how many distinct slugs have been registered.
func (r *Registry) Len() int {
	return len(r.seen)
}
