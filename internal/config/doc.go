// Package config provides configuration management for strikereport.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file passed with -config
//	3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern STRIKES_* for namespacing:
//
//	STRIKES_WORKBOOK_PATH=data/aircraftWildlifeStrikes.xlsx
//	STRIKES_LOGGING_LEVEL=debug
//	STRIKES_TELEMETRY_TRACE_EXPORTER=stdout
//	STRIKES_PIPELINE_CONCURRENCY=3
//
// Reports can only be changed from the file. A reports list in the file
// replaces the three built-in reports:
//
//	reports:
//	  - name: airlines
//	    column: 5
//	    header_label: Operator
//	    sheet_name: ChartForAirlines
//	    chart_anchor: D2
//	    magnitude_filter: true
//	    magnitude_ratio: 0.05
//	    sentinel: UNKNOWN
package config
