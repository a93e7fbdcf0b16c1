package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one entity row of a RowList keyed by the entity id.
type Row struct {
	ID    int64
	Cells []string
}

// RowList is the tabular view of a list screen: a header, one row per
// entity in server order and an optional trailing sentinel for inline
// creation. The cursor ranges over the data rows and the sentinel.
type RowList struct {
	header   []string
	rows     []Row
	index    map[int64]int
	sentinel bool
	cursor   int
}

// NewRowList returns an empty list with the given column headings.
func NewRowList(sentinel bool, header ...string) *RowList {
	return &RowList{
		header:   header,
		index:    map[int64]int{},
		sentinel: sentinel,
	}
}

// Render replaces every data row, preserving the given order.
func (l *RowList) Render(rows []Row) {
	l.rows = append([]Row(nil), rows...)
	l.reindex()
	l.cursor = 0
}

// InsertRow appends r after the last data row and before the sentinel.
// A row whose id is already present is updated in place instead.
func (l *RowList) InsertRow(r Row) {
	if l.UpdateRow(r) {
		return
	}
	onSentinel := l.OnSentinel()
	l.rows = append(l.rows, r)
	l.index[r.ID] = len(l.rows) - 1
	if onSentinel {
		l.cursor = len(l.rows)
	}
}

// RemoveRow removes the row with the given id and reports whether it was
// present. Removing an unknown id leaves the list untouched.
func (l *RowList) RemoveRow(id int64) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	l.reindex()
	if l.cursor > i {
		l.cursor--
	}
	l.clamp()
	return true
}

// UpdateRow replaces the cells of the row with r's id.
func (l *RowList) UpdateRow(r Row) bool {
	i, ok := l.index[r.ID]
	if !ok {
		return false
	}
	l.rows[i] = r
	return true
}

// Row returns the row with the given id.
func (l *RowList) Row(id int64) (Row, bool) {
	i, ok := l.index[id]
	if !ok {
		return Row{}, false
	}
	return l.rows[i], true
}

// IDs returns the data row ids in display order.
func (l *RowList) IDs() []int64 {
	ids := make([]int64, len(l.rows))
	for i, r := range l.rows {
		ids[i] = r.ID
	}
	return ids
}

func (l *RowList) Len() int {
	return len(l.rows)
}

// Selected returns the data row under the cursor. The header and the
// sentinel never yield a row.
func (l *RowList) Selected() (Row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return Row{}, false
	}
	return l.rows[l.cursor], true
}

// OnSentinel reports whether the cursor rests on the inline creation row.
func (l *RowList) OnSentinel() bool {
	return l.sentinel && l.cursor == len(l.rows)
}

func (l *RowList) SelectSentinel() {
	if l.sentinel {
		l.cursor = len(l.rows)
	}
}

// Select moves the cursor to the row with the given id.
func (l *RowList) Select(id int64) bool {
	i, ok := l.index[id]
	if ok {
		l.cursor = i
	}
	return ok
}

func (l *RowList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *RowList) MoveDown() {
	if l.cursor < l.last() {
		l.cursor++
	}
}

func (l *RowList) last() int {
	if l.sentinel {
		return len(l.rows)
	}
	return max(len(l.rows)-1, 0)
}

func (l *RowList) clamp() {
	l.cursor = min(max(l.cursor, 0), l.last())
}

func (l *RowList) reindex() {
	clear(l.index)
	for i, r := range l.rows {
		l.index[r.ID] = i
	}
}

// View renders the table. sentinel is the content of the inline creation
// row and is ignored when the list has none.
func (l *RowList) View(sentinel string) string {
	widths := l.widths()
	var b strings.Builder
	b.WriteString(headerStyle.Render("  " + formatCells(l.header, widths)))
	b.WriteString("\n")
	if len(l.rows) == 0 {
		b.WriteString(mutedStyle.Render("  (empty)"))
		b.WriteString("\n")
	}
	for i, r := range l.rows {
		line := formatCells(r.Cells, widths)
		if i == l.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if l.sentinel {
		if l.OnSentinel() {
			b.WriteString(selectedStyle.Render("> ") + sentinel)
		} else {
			b.WriteString("  " + mutedStyle.Render(sentinel))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (l *RowList) widths() []int {
	widths := make([]int, len(l.header))
	for i, h := range l.header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range l.rows {
		for i, c := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c))
			}
		}
	}
	return widths
}

func formatCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i < len(widths) && i < len(cells)-1 {
			c += strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		parts[i] = c
	}
	return strings.Join(parts, "  ")
}
