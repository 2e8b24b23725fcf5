package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/taxon/internal/classification"
	"github.com/Veraticus/taxon/internal/common"
	"github.com/Veraticus/taxon/internal/config"
	"github.com/Veraticus/taxon/internal/service"
	"github.com/Veraticus/taxon/internal/storage"
	"github.com/Veraticus/taxon/internal/taxonomy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// pathFlags maps the per-command path flags onto their configuration keys.
var pathFlags = map[string]string{
	"records": config.KeyRecordsPath,
	"mapping": config.KeyMappingPath,
	"output":  config.KeyOutputPath,
	"stats":   config.KeyStatsPath,
	"report":  config.KeyReportPath,
	"workers": config.KeyWorkers,
}

// applyFlagOverrides copies explicitly set flags into viper. Flags left at
// their zero value keep the configured value.
func applyFlagOverrides(cmd *cobra.Command) {
	for name, key := range pathFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		viper.Set(key, flag.Value.String())
	}
}

// loadSettings resolves the configuration for the running command.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	applyFlagOverrides(cmd)

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}
	return settings, nil
}

// loadTable reads the mapping table named by the settings.
func loadTable(settings *config.Settings) (*taxonomy.Table, error) {
	table, err := taxonomy.Load(settings.MappingPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot use mapping file %s", settings.MappingPath), err)
	}
	return table, nil
}

// newClassifier builds the classifier for table with the built-in rules.
func newClassifier(settings *config.Settings, table *taxonomy.Table) (*classification.Classifier, error) {
	cfg := classification.DefaultConfig()
	cfg.DefaultCategory = settings.DefaultCategory

	classifier, err := classification.New(table, cfg)
	if err != nil {
		return nil, common.NewUserError("mapping table is incomplete", err)
	}
	return classifier, nil
}

// initStorage opens and migrates the run history database.
func initStorage(ctx context.Context, settings *config.Settings) (service.HistoryStore, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
