package tui

import (
	"reflect"
	"strings"
	"testing"
)

func rowsOf(ids ...int64) []Row {
	rows := make([]Row, len(ids))
	for i, id := range ids {
		rows[i] = Row{ID: id, Cells: []string{"", "row"}}
	}
	return rows
}

func TestRenderPreservesOrder(t *testing.T) {
	l := NewRowList(true, "ID", "Name")
	l.Render(rowsOf(3, 1, 2))
	if got := l.IDs(); !reflect.DeepEqual(got, []int64{3, 1, 2}) {
		t.Errorf("Expected [3 1 2] but got %v", got)
	}

	l.Render(rowsOf(9))
	if got := l.IDs(); !reflect.DeepEqual(got, []int64{9}) {
		t.Errorf("Expected render to replace rows but got %v", got)
	}
}

func TestInsertRowKeepsSentinelLast(t *testing.T) {
	l := NewRowList(true, "ID", "Name")
	l.Render(rowsOf(1, 2))
	l.SelectSentinel()

	l.InsertRow(Row{ID: 3, Cells: []string{"3", "History"}})

	if got := l.IDs(); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("Expected [1 2 3] but got %v", got)
	}
	if !l.OnSentinel() {
		t.Errorf("Expected the cursor to stay on the sentinel row")
	}
	view := l.View("New topic")
	if strings.Index(view, "History") > strings.Index(view, "New topic") {
		t.Errorf("Expected the new row above the sentinel but got:\n%s", view)
	}
}

func TestRemoveRowTwice(t *testing.T) {
	l := NewRowList(false, "ID", "Title")
	l.Render(rowsOf(1, 2, 3))

	if !l.RemoveRow(2) {
		t.Fatalf("Expected first removal to report true")
	}
	if l.RemoveRow(2) {
		t.Errorf("Expected second removal to report false")
	}
	if got := l.IDs(); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("Expected [1 3] but got %v", got)
	}
	if l.RemoveRow(42) {
		t.Errorf("Expected removal of an unknown id to report false")
	}
}

func TestUpdateRowInPlace(t *testing.T) {
	l := NewRowList(true, "ID", "Name")
	l.Render(rowsOf(1, 2))

	if !l.UpdateRow(Row{ID: 2, Cells: []string{"2", "Renamed"}}) {
		t.Fatalf("Expected update of a present row to report true")
	}
	r, _ := l.Row(2)
	if r.Cells[1] != "Renamed" {
		t.Errorf("Expected Renamed but got %q", r.Cells[1])
	}
	if got := l.IDs(); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("Expected order to be unchanged but got %v", got)
	}
	if l.UpdateRow(Row{ID: 5}) {
		t.Errorf("Expected update of an unknown row to report false")
	}
}

func TestSelectedSkipsSentinel(t *testing.T) {
	testCases := []struct {
		name     string
		sentinel bool
		ids      []int64
		moves    int
		wantID   int64
		wantOK   bool
	}{
		{name: "first row", sentinel: true, ids: []int64{4, 5}, wantID: 4, wantOK: true},
		{name: "second row", sentinel: true, ids: []int64{4, 5}, moves: 1, wantID: 5, wantOK: true},
		{name: "sentinel", sentinel: true, ids: []int64{4, 5}, moves: 2, wantOK: false},
		{name: "clamped without sentinel", sentinel: false, ids: []int64{4, 5}, moves: 5, wantID: 5, wantOK: true},
		{name: "empty list", sentinel: false, wantOK: false},
		{name: "empty list with sentinel", sentinel: true, wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewRowList(tc.sentinel, "ID")
			l.Render(rowsOf(tc.ids...))
			for range tc.moves {
				l.MoveDown()
			}
			row, ok := l.Selected()
			if ok != tc.wantOK {
				t.Fatalf("Expected ok=%v but got %v", tc.wantOK, ok)
			}
			if ok && row.ID != tc.wantID {
				t.Errorf("Expected id %d but got %d", tc.wantID, row.ID)
			}
		})
	}
}

func TestRemoveSelectedRowMovesCursor(t *testing.T) {
	l := NewRowList(false, "ID")
	l.Render(rowsOf(1, 2, 3))
	l.Select(3)

	l.RemoveRow(3)

	row, ok := l.Selected()
	if !ok || row.ID != 2 {
		t.Errorf("Expected cursor on row 2 but got %v %v", row.ID, ok)
	}
}
