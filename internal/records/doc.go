// Package records turns parsed spreadsheet rows into header-keyed records with
// unique URL-safe slugs.
//
// The first row is the header set. Data rows that are entirely blank are
// dropped; every other row becomes a Record whose fields are exactly the
// trimmed headers, whose SourceIndex is its position in the filtered output,
// and whose Slug is unique within a single Build call. Slugs come from the
// first non-empty slug-like column, then name, then title, then "item", and
// collisions are resolved with numeric suffixes through a Registry.
//
// Build never fails: short rows yield empty fields and unusable slug sources
// fall back to "item".
package records
