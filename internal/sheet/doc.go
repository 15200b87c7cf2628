// Package sheet loads the published spreadsheet export and turns it into
// slugged records.
//
// A Loader fetches the export over HTTP, consults the session cache first,
// and only goes to the network when the cached text is missing, unreadable,
// empty, or older than the configured TTL. Cache failures never fail a load;
// they are logged and treated as a miss. Fetch failures are returned wrapped
// in ErrFetch.
package sheet
