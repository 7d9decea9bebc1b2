package domain

// ChartSpec describes where and how a ReportTable is charted
type ChartSpec struct {
	SheetName  string `json:"sheet_name"`
	Title      string `json:"title"`
	XAxisTitle string `json:"x_axis_title"`
	YAxisTitle string `json:"y_axis_title"`
	// Anchor is the A1 cell holding the chart's top-left corner
	Anchor string `json:"anchor"`
}
