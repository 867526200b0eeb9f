package table

import (
	"errors"
	"strings"
)

// ─────────────────────────────────────────────────────────────
// Table Model — structured view of a GFM table block
// ─────────────────────────────────────────────────────────────

// ErrNotTable is returned by Parse when the input has fewer than two
// non-blank lines (header + delimiter). Callers keep the block as plain text.
var ErrNotTable = errors.New("not a table")

// Alignment is the horizontal alignment of a column.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Valid reports whether a is one of the known alignments.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

// Table is derived from a table block's content and serialized back to it on
// every mutation. len(Alignments) == len(Headers) == len(row) for every row,
// and Rows is never empty.
type Table struct {
	Headers    []string    `json:"headers"`
	Alignments []Alignment `json:"alignments"`
	Rows       [][]string  `json:"rows"`
}

// Parse builds a Table from markdown. Blank lines are ignored; the first
// line is the header row and the second the delimiter row.
func Parse(markdown string) (*Table, error) {
	var lines []string
	for _, line := range strings.Split(markdown, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, ErrNotTable
	}

	t := &Table{Headers: ParseRow(lines[0])}
	delim := ParseRow(lines[1])
	t.Alignments = make([]Alignment, len(t.Headers))
	for i := range t.Alignments {
		t.Alignments[i] = AlignLeft
		if i < len(delim) {
			t.Alignments[i] = alignmentOf(delim[i])
		}
	}
	for _, line := range lines[2:] {
		t.Rows = append(t.Rows, fitRow(ParseRow(line), len(t.Headers)))
	}
	if len(t.Rows) == 0 {
		t.Rows = [][]string{emptyRow(len(t.Headers))}
	}
	return t, nil
}

// ParseRow strips one leading and one trailing pipe, splits on the
// remaining unescaped pipes and trims every cell. "\|" inside a cell is read
// back as a literal pipe.
func ParseRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var cells []string
	var cell strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			cell.WriteByte('|')
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(s[i])
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}

// CellValue normalizes v to what a cell can hold after a serialize and parse
// cycle: line breaks become "<br>" and surrounding whitespace is trimmed.
func CellValue(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	v = strings.ReplaceAll(v, "\r", "\n")
	return strings.TrimSpace(strings.ReplaceAll(v, "\n", "<br>"))
}

func alignmentOf(cell string) Alignment {
	c := strings.TrimSpace(cell)
	left := strings.HasPrefix(c, ":")
	right := strings.HasSuffix(c, ":") && len(c) > 1
	switch {
	case left && right:
		return AlignCenter
	case right:
		return AlignRight
	default:
		return AlignLeft
	}
}

func fitRow(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	return append(row, make([]string, n-len(row))...)
}

func emptyRow(n int) []string {
	return make([]string, n)
}

// Serialize renders headers, a delimiter row and every data row as
// "| a | b |" lines joined by "\n".
func Serialize(headers []string, alignments []Alignment, rows [][]string) string {
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(headers))

	delim := make([]string, len(headers))
	for i := range delim {
		a := AlignLeft
		if i < len(alignments) {
			a = alignments[i]
		}
		switch a {
		case AlignCenter:
			delim[i] = ":---:"
		case AlignRight:
			delim[i] = "---:"
		default:
			delim[i] = "---"
		}
	}
	lines = append(lines, formatRow(delim))

	for _, row := range rows {
		lines = append(lines, formatRow(row))
	}
	return strings.Join(lines, "\n")
}

func formatRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(CellValue(c), "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

// Markdown serializes t.
func (t *Table) Markdown() string {
	return Serialize(t.Headers, t.Alignments, t.Rows)
}

// Columns returns the column count.
func (t *Table) Columns() int { return len(t.Headers) }

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{
		Headers:    append([]string(nil), t.Headers...),
		Alignments: append([]Alignment(nil), t.Alignments...),
		Rows:       make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}
