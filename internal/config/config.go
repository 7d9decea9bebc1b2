package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"strikecharts/internal/errors"
)

// EnvPrefix namespaces every environment override, e.g. STRIKES_WORKBOOK_PATH
const EnvPrefix = "STRIKES"

// Config represents the complete application configuration
type Config struct {
	Workbook  WorkbookConfig  `yaml:"workbook" envconfig:"WORKBOOK"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Reports   []ReportConfig  `yaml:"reports" ignored:"true" validate:"required,min=1,unique=Name,dive"`
}

// WorkbookConfig locates the incident workbook
type WorkbookConfig struct {
	Path string `yaml:"path" validate:"required"`
	// SourceSheet selects the incident sheet; empty means the first sheet
	SourceSheet string `yaml:"source_sheet" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" validate:"oneof=json"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" split_words:"true" validate:"required"`
	TraceExporter string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout file"`
	TraceFile     string  `yaml:"trace_file" split_words:"true" validate:"required_if=TraceExporter file"`
	SampleRatio   float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
	// MetricsFile receives a Prometheus text exposition at shutdown when set
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
}

// OutputConfig holds optional side outputs
type OutputConfig struct {
	CSVDir string `yaml:"csv_dir" split_words:"true"`
	PNGDir string `yaml:"png_dir" split_words:"true"`
	Backup bool   `yaml:"backup"`
}

// PipelineConfig tunes report computation
type PipelineConfig struct {
	// Concurrency bounds how many reports are computed at once. Workbook
	// writes are always sequential.
	Concurrency int `yaml:"concurrency" validate:"min=1,max=16"`
}

// ReportConfig describes one frequency report
type ReportConfig struct {
	Name            string  `yaml:"name" validate:"required"`
	Column          int     `yaml:"column" validate:"gte=0"`
	HeaderLabel     string  `yaml:"header_label" validate:"required"`
	SheetName       string  `yaml:"sheet_name" validate:"required,max=31,excludesall=[]:*?/\\"`
	ChartTitle      string  `yaml:"chart_title"`
	XAxisTitle      string  `yaml:"x_axis_title"`
	YAxisTitle      string  `yaml:"y_axis_title"`
	ChartAnchor     string  `yaml:"chart_anchor" validate:"required,cell"`
	MagnitudeFilter bool    `yaml:"magnitude_filter"`
	MagnitudeRatio  float64 `yaml:"magnitude_ratio" validate:"gte=0,lte=1"`
	Sentinel        string  `yaml:"sentinel"`
	SentinelMatch   string  `yaml:"sentinel_match" validate:"omitempty,oneof=equal contains"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file", err)
		}
	}

	// Fields without an env var are left untouched, so file values survive
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// A reports list in the file replaces the defaults entirely. The probe
	// also tells an explicit magnitude_ratio of 0 from an omitted one.
	var probe struct {
		Reports []struct {
			MagnitudeRatio *float64 `yaml:"magnitude_ratio"`
		} `yaml:"reports"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Reports != nil {
		cfg.Reports = nil
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return err
	}
	for i := range cfg.Reports {
		ratioSet := i < len(probe.Reports) && probe.Reports[i].MagnitudeRatio != nil
		cfg.Reports[i].applyDefaults(ratioSet)
	}
	return nil
}

// applyDefaults fills presentation fields a config file may omit. ratioSet
// reports whether the file gave magnitude_ratio, so 0 disables the threshold.
func (r *ReportConfig) applyDefaults(ratioSet bool) {
	if r.YAxisTitle == "" {
		r.YAxisTitle = DefaultYAxisTitle
	}
	if r.ChartAnchor == "" {
		r.ChartAnchor = DefaultChartAnchor
	}
	if r.MagnitudeFilter {
		if !ratioSet {
			r.MagnitudeRatio = DefaultMagnitudeRatio
		}
		if r.Sentinel == "" {
			r.Sentinel = DefaultSentinel
		}
	}
	if r.SentinelMatch == "" {
		r.SentinelMatch = SentinelMatchEqual
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("cell", isCellName)
	return v
}

// isCellName accepts A1-style cell references such as "C1" or "AA12"
func isCellName(fl validator.FieldLevel) bool {
	_, _, err := excelize.CellNameToCoordinates(fl.Field().String())
	return err == nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	sheets := make(map[string]string, len(c.Reports))
	for _, r := range c.Reports {
		key := strings.ToLower(r.SheetName)
		if other, dup := sheets[key]; dup {
			return fmt.Errorf("reports %q and %q both write sheet %q", other, r.Name, r.SheetName)
		}
		sheets[key] = r.Name
	}
	return nil
}

// Report returns the report with the given name
func (c *Config) Report(name string) (ReportConfig, bool) {
	for _, r := range c.Reports {
		if r.Name == name {
			return r, true
		}
	}
	return ReportConfig{}, false
}

// SelectReports narrows the configured reports to names, keeping config order.
// An empty list keeps everything.
func (c *Config) SelectReports(names []string) error {
	if len(names) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := c.Report(n); !ok {
			return fmt.Errorf("unknown report %q", n)
		}
		wanted[n] = true
	}
	selected := c.Reports[:0:0]
	for _, r := range c.Reports {
		if wanted[r.Name] {
			selected = append(selected, r)
		}
	}
	c.Reports = selected
	return nil
}
