package records

import "github.com/sahilm/fuzzy"

// FindBySlug returns the record carrying slug.
func FindBySlug(recs []Record, slug string) (Record, bool) {
	for _, r := range recs {
		if r.Slug == slug {
			return r, true
		}
	}
	return Record{}, false
}

type searchSource []Record

func (s searchSource) String(i int) string {
	r := s[i]
	label := r.Label()
	if label == r.Slug {
		return r.Slug
	}
	return r.Slug + " " + label
}

func (s searchSource) Len() int { return len(s) }

// Suggest ranks records by fuzzy match of query against their slug and label,
// best first. A non-positive limit returns every match.
func Suggest(recs []Record, query string, limit int) []Record {
	if query == "" || len(recs) == 0 {
		return nil
	}
	matches := fuzzy.FindFrom(query, searchSource(recs))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Record, 0, len(matches))
	for _, m := range matches {
		out = append(out, recs[m.Index])
	}
	return out
}
