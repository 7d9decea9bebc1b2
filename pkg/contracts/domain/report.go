package domain

// Cell is one worksheet cell as read from the incident sheet. Text marks
// cells the workbook stores as strings, whose content is taken verbatim and
// never read as a number.
type Cell struct {
	Raw  string
	Text bool
}

// Category classifies the cell: string cells are text, everything else is
// classified from its raw value
func (c Cell) Category() Category {
	if c.Text {
		return TextCategory(c.Raw)
	}
	return ParseCategory(c.Raw)
}

// Row is one incident record, position significant
type Row []Cell

// Cells builds a row of untyped cells
func Cells(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Cell{Raw: v}
	}
	return row
}

// Table is the incident sheet in row order. Row 0 is the header row.
type Table []Row

// DataRows returns the number of rows excluding the header
func (t Table) DataRows() int {
	if len(t) == 0 {
		return 0
	}
	return len(t) - 1
}

// Observation pairs a column value with the A1 coordinate it was read from
type Observation struct {
	Cell  string
	Value Category
}

// FrequencyEntry is a (category, count) pair
type FrequencyEntry struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// ReportTable is the ordered list of entries that gets charted
type ReportTable []FrequencyEntry

// Total returns the sum of all counts
func (r ReportTable) Total() int {
	total := 0
	for _, e := range r {
		total += e.Count
	}
	return total
}

// MaxCount returns the largest count, or 0 for an empty table
func (r ReportTable) MaxCount() int {
	max := 0
	for _, e := range r {
		if e.Count > max {
			max = e.Count
		}
	}
	return max
}

// Categories returns the category labels in table order
func (r ReportTable) Categories() []string {
	labels := make([]string, len(r))
	for i, e := range r {
		labels[i] = e.Category.String()
	}
	return labels
}

// Find returns the index of the entry holding c, or -1
func (r ReportTable) Find(c Category) int {
	key := c.Key()
	for i, e := range r {
		if e.Category.Key() == key {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of the table
func (r ReportTable) Clone() ReportTable {
	out := make(ReportTable, len(r))
	copy(out, r)
	return out
}
