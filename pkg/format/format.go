package format

import (
	"fmt"
	"sort"
	"strings"
)

// Col denotes a labelled cell.
type Col struct {
	Key   string
	Value interface{}
}

// Row consists of an array of columns. Every row rendered in the same
// table is expected to carry the same labels in the same order.
type Row []Col

// Keys return all labels of this row.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i := range r {
		keys[i] = r[i].Key
	}
	return keys
}

// ValueStrings returns the printable form of each value.
func (r Row) ValueStrings() []string {
	strs := make([]string, len(r))
	for i := range r {
		strs[i] = cellString(r[i].Value)
	}
	return strs
}

// Options denotes render options.
type Options struct {
	// Sort orders rows by the value of their first column.
	Sort bool
}

// Template renders rows into a printable form.
type Template interface {
	Render(rows []Row, opts Options) []byte
}

// Basic renders a bordered, left aligned table.
type Basic struct{}

// Render implements Template. It returns nil when there is nothing to
// print.
func (Basic) Render(rows []Row, opts Options) []byte {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}

	labels := rows[0].Keys()
	cells := make([][]string, len(rows))
	for i := range rows {
		cells[i] = rows[i].ValueStrings()
	}

	if opts.Sort {
		sort.SliceStable(cells, func(i, j int) bool {
			return first(cells[i]) < first(cells[j])
		})
	}

	widths := make([]int, len(labels))
	for i := range labels {
		widths[i] = len(labels[i])
	}
	for _, row := range cells {
		for i := range row {
			if i < len(widths) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	banner := border(widths)
	sb.WriteString(banner)
	writeLine(&sb, labels, widths)
	sb.WriteString(banner)
	for _, row := range cells {
		writeLine(&sb, row, widths)
	}
	sb.WriteString(banner)

	return []byte(sb.String())
}

func border(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteByte('|')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeLine(sb *strings.Builder, vals []string, widths []int) {
	sb.WriteByte('|')
	for i, w := range widths {
		v := ""
		if i < len(vals) {
			v = vals[i]
		}
		sb.WriteString(v)
		sb.WriteString(strings.Repeat(" ", w-len(v)))
		sb.WriteByte('|')
	}
	sb.WriteByte('\n')
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
