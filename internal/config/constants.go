package config

import "strikecharts/pkg/contracts"

// Application constants
const (
	AppName    = "strikereport"
	AppVersion = contracts.Version

	DefaultWorkbookPath = "aircraftWildlifeStrikes.xlsx"

	// Chart presentation shared by every report
	DefaultYAxisTitle  = "Frequency"
	DefaultChartAnchor = "C1"

	// Operator report policy
	DefaultMagnitudeRatio = 0.10
	DefaultSentinel       = "UNKNOWN"

	SentinelMatchEqual    = "equal"
	SentinelMatchContains = "contains"
)

// Report names accepted by -reports
const (
	ReportYears    = "years"
	ReportMonths   = "months"
	ReportAirlines = "airlines"
)

// Default returns the built-in configuration: the three wildlife strike reports
// over the first sheet of aircraftWildlifeStrikes.xlsx.
func Default() *Config {
	return &Config{
		Workbook: WorkbookConfig{
			Path: DefaultWorkbookPath,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/strikereport.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
		Pipeline: PipelineConfig{
			Concurrency: 1,
		},
		Reports: DefaultReports(),
	}
}

// DefaultReports returns the year, month and operator reports
func DefaultReports() []ReportConfig {
	return []ReportConfig{
		{
			Name:          ReportYears,
			Column:        1,
			HeaderLabel:   "Incident Year",
			SheetName:     "ChartForYears",
			ChartTitle:    "Years and # of Collisions",
			XAxisTitle:    "Years",
			YAxisTitle:    DefaultYAxisTitle,
			ChartAnchor:   "C1",
			SentinelMatch: SentinelMatchEqual,
		},
		{
			Name:          ReportMonths,
			Column:        2,
			HeaderLabel:   "Incident Month",
			SheetName:     "ChartForMonths",
			ChartTitle:    "Months and # of Collisions",
			XAxisTitle:    "Months",
			YAxisTitle:    DefaultYAxisTitle,
			ChartAnchor:   "C1",
			SentinelMatch: SentinelMatchEqual,
		},
		{
			Name:            ReportAirlines,
			Column:          5,
			HeaderLabel:     "Operator",
			SheetName:       "ChartForAirlines",
			ChartTitle:      "Airlines and # of Collisions",
			XAxisTitle:      "Airlines",
			YAxisTitle:      DefaultYAxisTitle,
			ChartAnchor:     "D2",
			MagnitudeFilter: true,
			MagnitudeRatio:  DefaultMagnitudeRatio,
			Sentinel:        DefaultSentinel,
			SentinelMatch:   SentinelMatchEqual,
		},
	}
}
