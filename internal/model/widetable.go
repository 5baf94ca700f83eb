package model

// YearRange is the closed reporting-year domain a workbook covers. Every
// wide table carries a column group for every year in the range whether or
// not the company reported that year.
type YearRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Years returns the range in ascending order.
func (r YearRange) Years() []int {
	if r.Last < r.First {
		return nil
	}
	years := make([]int, 0, r.Last-r.First+1)
	for y := r.First; y <= r.Last; y++ {
		years = append(years, y)
	}
	return years
}

// Contains reports whether y falls inside the range.
func (r YearRange) Contains(y int) bool {
	return y >= r.First && y <= r.Last
}

// YearCell holds one year's resolved slot for one field row.
type YearCell struct {
	Value       string `json:"value"`
	Source      string `json:"source"`
	LastUpdated string `json:"last_updated"`
	Restated    string `json:"restated,omitempty"`
}

// WideFieldRow is one row of a merged wide table: a field with one cell
// per reporting year. Unit is filled once and then frozen unless it was
// previously empty.
type WideFieldRow struct {
	FieldName   string            `json:"field_name"`
	Description string            `json:"description"`
	Unit        string            `json:"unit,omitempty"`
	Cells       map[int]*YearCell `json:"cells"`
}

// Cell returns the cell for a year, allocating it on first touch.
func (r *WideFieldRow) Cell(year int) *YearCell {
	if r.Cells == nil {
		r.Cells = make(map[int]*YearCell)
	}
	c, ok := r.Cells[year]
	if !ok {
		c = &YearCell{}
		r.Cells[year] = c
	}
	return c
}

// WideTable is a field-by-year table for one sheet. Row order is
// first-seen order of field names across the processed years; the merge
// step appends new rows at the end and never reorders.
type WideTable struct {
	Sheet string
	Years YearRange
	// Restated marks sheets that carry a Restated_<year> column per year.
	Restated bool
	rows     []*WideFieldRow
	byName   map[string]*WideFieldRow
}

// NewWideTable creates an empty table for a sheet over a year domain.
func NewWideTable(sheet string, years YearRange) *WideTable {
	return &WideTable{
		Sheet:  sheet,
		Years:  years,
		byName: make(map[string]*WideFieldRow),
	}
}

// Row returns the row for a field name, if present.
func (t *WideTable) Row(name string) (*WideFieldRow, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// EnsureRow returns the row for a field name, appending a new row at the
// end on first sight.
func (t *WideTable) EnsureRow(name string) *WideFieldRow {
	if r, ok := t.byName[name]; ok {
		return r
	}
	r := &WideFieldRow{FieldName: name, Cells: make(map[int]*YearCell)}
	t.rows = append(t.rows, r)
	t.byName[name] = r
	return r
}

// AppendRow adds a prebuilt row at the end. Rows carrying a field name
// are registered for lookup; anonymous rows such as placeholders are not.
func (t *WideTable) AppendRow(r *WideFieldRow) {
	t.rows = append(t.rows, r)
	if r.FieldName != "" {
		t.byName[r.FieldName] = r
	}
}

// Rows returns the rows in presentation order.
func (t *WideTable) Rows() []*WideFieldRow { return t.rows }

// Len returns the number of field rows.
func (t *WideTable) Len() int { return len(t.rows) }

// ListTable is an append-only sheet (restatements, target progress):
// each event is its own row, newest first, never year-merged.
type ListTable struct {
	Sheet   string     `json:"sheet"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Append adds one event row.
func (t *ListTable) Append(row []string) {
	t.Rows = append(t.Rows, row)
}
