package records

import "strings"

// Headers returns the trimmed header set, which is the first row.
func Headers(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// Build converts parsed rows into records. Row 0 is the header set; data rows
// whose fields all trim to empty are dropped. Each call uses its own
// Registry, so slugs are unique within the returned slice only.
func Build(rows [][]string) []Record {
	headers := Headers(rows)
	if len(rows) < 2 {
		return []Record{}
	}

	keys, slugAppended := headerKeys(headers)
	registry := NewRegistry()
	out := make([]Record, 0, len(rows)-1)

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		fields := make(map[string]string, len(keys))
		for i, h := range headers {
			var v string
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			fields[h] = v
		}

		slug := registry.Assign(BaseSlug(fields))
		fields[SlugKey] = slug

		out = append(out, Record{
			SourceIndex:  len(out),
			Slug:         slug,
			keys:         keys,
			slugAppended: slugAppended,
			fields:       fields,
		})
	}
	return out
}

// headerKeys dedups headers keeping first-seen order and guarantees the slug
// key is present, reporting whether it had to be appended.
func headerKeys(headers []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(headers)+1)
	keys := make([]string, 0, len(headers)+1)
	for _, h := range headers {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		keys = append(keys, h)
	}
	if _, ok := seen[SlugKey]; ok {
		return keys, false
	}
	return append(keys, SlugKey), true
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
