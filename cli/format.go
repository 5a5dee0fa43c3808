package cli

import (
	"strings"
	"time"
	"unicode/utf8"
)

const columnSeparator = "   "

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(time.RFC3339)
}

func newTable(headers []string) table {
	return table{
		headers:   headers,
		maxWidths: make([]int, len(headers)),
	}
}

// table formats rows as aligned columns. The header is underlined with dashes.
type table struct {
	headers   []string
	rows      [][]string
	maxWidths []int // Per column, 0 means unlimited.
}

func (t *table) addRow(row []string) {
	t.rows = append(t.rows, row)
}

// wrap limits the width of a column. Longer cells are broken at spaces into multiple lines.
// Words, which exceed the width, are broken hard.
func (t *table) wrap(column int, width int) {
	t.maxWidths[column] = width
}

func (t *table) format() string {
	cells := make([][][]string, len(t.rows))
	for i, row := range t.rows {
		cells[i] = make([][]string, len(t.headers))
		for j := range t.headers {
			var value string
			if j < len(row) {
				value = row[j]
			}
			cells[i][j] = wrapText(value, t.maxWidths[j])
		}
	}

	widths := make([]int, len(t.headers))
	for j, header := range t.headers {
		widths[j] = utf8.RuneCountInString(header)
	}
	for i := range cells {
		for j, lines := range cells[i] {
			for _, line := range lines {
				widths[j] = max(widths[j], utf8.RuneCountInString(line))
			}
		}
	}

	var sb strings.Builder
	writeLine(&sb, t.headers, widths)

	dashes := make([]string, len(widths))
	for j, width := range widths {
		dashes[j] = strings.Repeat("-", width)
	}
	writeLine(&sb, dashes, widths)

	for i := range cells {
		height := 1
		for _, lines := range cells[i] {
			height = max(height, len(lines))
		}

		for k := 0; k < height; k++ {
			line := make([]string, len(widths))
			for j, lines := range cells[i] {
				if k < len(lines) {
					line[j] = lines[k]
				}
			}
			writeLine(&sb, line, widths)
		}
	}

	return sb.String()
}

func writeLine(sb *strings.Builder, values []string, widths []int) {
	var line strings.Builder
	for j, value := range values {
		if j != 0 {
			line.WriteString(columnSeparator)
		}
		line.WriteString(value)
		line.WriteString(strings.Repeat(" ", widths[j]-utf8.RuneCountInString(value)))
	}

	sb.WriteString(strings.TrimRight(line.String(), " "))
	sb.WriteRune('\n')
}

// wrapText breaks a text into lines of at most width runes.
func wrapText(s string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}

	var lines []string
	var line []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			if len(line) != 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}

		switch {
		case len(line) == 0:
			line = w
		case len(line)+1+len(w) <= width:
			line = append(append(line, ' '), w...)
		default:
			lines = append(lines, string(line))
			line = w
		}
	}
	if len(line) != 0 {
		lines = append(lines, string(line))
	}
	return lines
}
