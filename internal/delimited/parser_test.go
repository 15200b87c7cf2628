package delimited

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{"empty", "", nil},
		{"quoted delimiter", "a,b,\"c,d\"\n1,2,3", [][]string{{"a", "b", "c,d"}, {"1", "2", "3"}}},
		{"escaped quotes", "\"He said \"\"hi\"\"\",2", [][]string{{"He said \"hi\"", "2"}}},
		{"trailing newline", "a,b\n1,2\n", [][]string{{"a", "b"}, {"1", "2"}}},
		{"no trailing newline", "a,b\n1,2", [][]string{{"a", "b"}, {"1", "2"}}},
		{"embedded newline", "\"line1\nline2\",x\n", [][]string{{"line1\nline2", "x"}}},
		{"embedded crlf", "\"line1\r\nline2\",x\r\n", [][]string{{"line1\r\nline2", "x"}}},
		{"empty fields", ",,\n", [][]string{{"", "", ""}}},
		{"trailing delimiter", "a,", [][]string{{"a", ""}}},
		{"blank middle line", "a\n\nb\n", [][]string{{"a"}, {""}, {"b"}}},
		{"bare carriage return", "a\rb", [][]string{{"a"}, {"b"}}},
		{"ragged rows", "a,b,c\n1\n", [][]string{{"a", "b", "c"}, {"1"}}},
		{"quotes mid field", "ab\"c,d\"e\n", [][]string{{"abc,de"}}},
		{"unterminated quote runs to eof", "a,\"open\nstill open", [][]string{{"a", "open\nstill open"}}},
		{"multibyte", "café,naïve\n", [][]string{{"café", "naïve"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCRLFMatchesLF(t *testing.T) {
	crlf := Parse("a,b\r\n1,2\r\n")
	lf := Parse("a,b\n1,2\n")
	if !reflect.DeepEqual(crlf, lf) {
		t.Fatalf("CRLF rows %q differ from LF rows %q", crlf, lf)
	}
}

func TestParseLoneTrailingNewlineAddsNoRow(t *testing.T) {
	rows := Parse("h1,h2\nv1,v2\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %q", len(rows), rows)
	}
}

func TestParseReaderStripsBOM(t *testing.T) {
	rows, err := ParseReader(strings.NewReader("\xef\xbb\xbfname,slug\nAcme,acme\n"))
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if rows[0][0] != "name" {
		t.Fatalf("expected BOM to be stripped, got header %q", rows[0][0])
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestNewParserTabDelimiter(t *testing.T) {
	p, err := NewParser(Options{Delimiter: '\t'})
	if err != nil {
		t.Fatalf("NewParser returned error: %v", err)
	}
	got := p.Parse("a\tb,c\n\"x\ty\"\tz\n")
	want := [][]string{{"a", "b,c"}, {"x\ty", "z"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %q, want %q", got, want)
	}
}

func TestNewParserRejectsReservedDelimiters(t *testing.T) {
	for _, delim := range []rune{'"', '\n', '\r', '¦'} {
		if _, err := NewParser(Options{Delimiter: delim}); !errors.Is(err, ErrInvalidDelimiter) {
			t.Errorf("NewParser(%q) error = %v, want ErrInvalidDelimiter", delim, err)
		}
	}
}
