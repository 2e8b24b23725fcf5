package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/taxon/internal/classification"
	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/report"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyRecordsPath     = "paths.records"
	KeyMappingPath     = "paths.mapping"
	KeyOutputPath      = "paths.output"
	KeyStatsPath       = "paths.stats"
	KeyReportPath      = "paths.report"
	KeyDefaultCategory = "classification.default_category"
	KeyWorkers         = "classification.workers"
	KeySampleChanges   = "report.sample_changes"
	KeyDatabasePath    = "database.path"
	KeyScheduleCron    = "schedule.cron"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
)

// Default file locations, relative to the working directory.
const (
	DefaultRecordsPath  = "platforms.json"
	DefaultMappingPath  = "category-mapping.json"
	DefaultStatsPath    = "recategorization-stats.json"
	DefaultReportPath   = "CATEGORY_MIGRATION_REPORT.md"
	DefaultDatabasePath = "$HOME/.local/share/taxon/taxon.db"
	DefaultSchedule     = "0 3 * * *"
)

// Settings is the resolved configuration for one command.
type Settings struct {
	RecordsPath     string
	MappingPath     string
	OutputPath      string
	StatsPath       string
	ReportPath      string
	DefaultCategory string
	DatabasePath    string
	ScheduleCron    string
	Workers         int
	SampleChanges   int
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRecordsPath, DefaultRecordsPath)
	v.SetDefault(KeyMappingPath, DefaultMappingPath)
	v.SetDefault(KeyOutputPath, "")
	v.SetDefault(KeyStatsPath, DefaultStatsPath)
	v.SetDefault(KeyReportPath, DefaultReportPath)
	v.SetDefault(KeyDefaultCategory, classification.DefaultCategory)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeySampleChanges, report.DefaultSampleChanges)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyScheduleCron, DefaultSchedule)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load resolves settings from v. Paths are expanded; an empty output path
// means the records file is rewritten in place.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		RecordsPath:     v.GetString(KeyRecordsPath),
		MappingPath:     v.GetString(KeyMappingPath),
		OutputPath:      v.GetString(KeyOutputPath),
		StatsPath:       v.GetString(KeyStatsPath),
		ReportPath:      v.GetString(KeyReportPath),
		DefaultCategory: strings.TrimSpace(v.GetString(KeyDefaultCategory)),
		DatabasePath:    v.GetString(KeyDatabasePath),
		ScheduleCron:    strings.TrimSpace(v.GetString(KeyScheduleCron)),
		Workers:         v.GetInt(KeyWorkers),
		SampleChanges:   v.GetInt(KeySampleChanges),
	}
	expandAll(&s.RecordsPath, &s.MappingPath, &s.OutputPath, &s.StatsPath, &s.ReportPath, &s.DatabasePath)

	if s.OutputPath == "" {
		s.OutputPath = s.RecordsPath
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for values no command can work with.
func (s *Settings) Validate() error {
	if s.RecordsPath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyRecordsPath)
	}
	if s.MappingPath == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyMappingPath)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: %s must be at least 1", common.ErrInvalidConfig, KeyWorkers)
	}
	if s.SampleChanges < 0 {
		return fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeySampleChanges)
	}
	return nil
}

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("%w: cron expression %q: %v", common.ErrInvalidConfig, expr, err)
	}
	return schedule, nil
}
