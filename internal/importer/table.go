package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyFile indicates the input has no header row.
	ErrEmptyFile = errors.New("file is empty")
)

var (
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
	headerSpaceRe = regexp.MustCompile(`[\s_]+`)
)

// nullTokens are spreadsheet renderings of an empty cell.
var nullTokens = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
}

// decode returns the content as UTF-8. A UTF-8 BOM is stripped; anything that
// is not valid UTF-8 is decoded as Windows-1252.
func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode as windows-1252: %w", err)
	}
	return out, nil
}

// normalizeHeader folds a column name for case- and accent-insensitive matching.
func normalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return headerSpaceRe.ReplaceAllString(b.String(), " ")
}

// sniffDelimiter picks ';' or ',' from whichever occurs more in the header line.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// table is a decoded CSV file with a case-insensitive header index.
type table struct {
	index map[string]int
	rows  [][]string
}

// readTable decodes and parses a CSV file.
func readTable(r io.Reader) (*table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	t := &table{index: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, name := range records[0] {
		key := normalizeHeader(name)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

// column resolves the first matching alias to a column index.
func (t *table) column(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if i, ok := t.index[normalizeHeader(alias)]; ok {
			return i, true
		}
	}
	return 0, false
}

// columns resolves every field to a column index. Fields listed in required
// must be present.
func (t *table) columns(fields map[string][]string, required ...string) (map[string]int, error) {
	out := make(map[string]int, len(fields))
	for field, aliases := range fields {
		if i, ok := t.column(aliases...); ok {
			out[field] = i
		}
	}
	var missing []string
	for _, field := range required {
		if _, ok := out[field]; !ok {
			missing = append(missing, fields[field][0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return out, nil
}

// cell returns the trimmed value of a field in a row. Absent columns, short
// rows and null tokens all read as "".
func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	if nullTokens[strings.ToLower(v)] {
		return ""
	}
	return v
}

// blank reports whether every cell of a row is empty.
func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
