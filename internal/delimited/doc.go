// Package delimited splits published spreadsheet exports into rows of fields.
//
// The scanner is a single left-to-right pass with one rune of lookahead. Quoted
// fields may contain delimiters, CR/LF, and doubled quotes ("") standing for a
// literal quote. Malformed input never produces an error: an unterminated
// quoted field runs to end of input and is flushed as the final field, and a
// stray quote in the middle of a field simply toggles quoted mode.
//
// Unlike encoding/csv, rows may have any number of fields and bare quotes are
// accepted.
package delimited
