package delimited

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	quote          = '"'
	defaultDelim   = ','
	lineFeed       = '\n'
	carriageReturn = '\r'
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ErrInvalidDelimiter reports a delimiter the scanner cannot use.
var ErrInvalidDelimiter = errors.New("invalid delimiter")

// Options configures a Parser.
type Options struct {
	// Delimiter separates fields. Zero means comma.
	Delimiter rune
}

// Parser scans delimited text into rows. The zero value is not usable; build
// one with NewParser.
type Parser struct {
	delim byte
}

// NewParser validates opts and returns a Parser. The delimiter must be a
// single-byte character other than a quote or line terminator.
func NewParser(opts Options) (*Parser, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = defaultDelim
	}
	switch {
	case delim >= utf8.RuneSelf:
		return nil, fmt.Errorf("%w: %q is not a single-byte character", ErrInvalidDelimiter, delim)
	case delim == quote, delim == lineFeed, delim == carriageReturn:
		return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidDelimiter, delim)
	}
	return &Parser{delim: byte(delim)}, nil
}

var commaParser = &Parser{delim: defaultDelim}

// Parse splits comma-separated text into rows using the default Parser.
func Parse(text string) [][]string {
	return commaParser.Parse(text)
}

// ParseReader reads all of r, drops a leading UTF-8 byte order mark, and
// parses the remainder as comma-separated text.
func ParseReader(r io.Reader) ([][]string, error) {
	return commaParser.ParseReader(r)
}

// ParseReader reads all of r, drops a leading UTF-8 byte order mark, and
// parses the remainder.
func (p *Parser) ParseReader(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read delimited text: %w", err)
	}
	return p.Parse(string(bytes.TrimPrefix(data, utf8BOM))), nil
}

// Parse splits text into rows of unquoted fields. Empty input yields no rows.
// A row is only emitted for a trailing line when it holds at least one
// character or delimiter.
func (p *Parser) Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == quote:
			if inQuotes && i+1 < len(text) && text[i+1] == quote {
				field.WriteByte(quote)
				i++
				continue
			}
			inQuotes = !inQuotes
		case inQuotes:
			field.WriteByte(ch)
		case ch == p.delim:
			endField()
		case ch == carriageReturn:
			if i+1 < len(text) && text[i+1] == lineFeed {
				// The line feed terminates the row.
				continue
			}
			endRow()
		case ch == lineFeed:
			endRow()
		default:
			field.WriteByte(ch)
		}
	}

	// Input without a trailing newline, or an unterminated quoted field.
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}
