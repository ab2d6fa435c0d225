package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/jcdickinson/rustdown/internal/cas"
	"github.com/jcdickinson/rustdown/internal/config"
	"github.com/jcdickinson/rustdown/internal/db"
	"github.com/jcdickinson/rustdown/internal/extract"
	"github.com/jcdickinson/rustdown/internal/rustdoc"
)

var (
	configFile string

	flagPackage    string
	flagVersion    string
	flagJSONPath   string
	flagModulePath string
	flagKind       string
	flagOutput     string
	flagNoIndex    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Render selected items to a Markdown tree",
	Long: `Extract renders every selected public item to <output>/<module path>/<name>.md,
with a struct's associated methods nested one directory deeper. Selections
come from a TOML config file or, for a single package, from flags.`,
	Example: `  rustdown extract --package arrow --kind function --module-path arrow::compute --output docs
  rustdown extract --config rustdown.toml`,
	Run: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&configFile, "config", "", "TOML config file with [[packages]] selections")
	extractCmd.Flags().StringVar(&flagPackage, "package", "", "package to extract")
	extractCmd.Flags().StringVar(&flagVersion, "version", "", `package version (default "latest")`)
	extractCmd.Flags().StringVar(&flagJSONPath, "json-path", "", "local rustdoc JSON file (skips docs.rs)")
	extractCmd.Flags().StringVar(&flagModulePath, "module-path", "", `filter by module path (e.g. "crate::module")`)
	extractCmd.Flags().StringVar(&flagKind, "kind", "function", "filter by item kind")
	extractCmd.Flags().StringVar(&flagOutput, "output", "docs", "output root directory")
	extractCmd.Flags().BoolVar(&flagNoIndex, "no-index", false, "skip the index database and page archive")
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, err := extractionConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	collections, err := extract.FromConfig(cfg)
	if err != nil {
		log.Fatalf("collecting items: %v", err)
	}
	if !flagNoIndex {
		collections.SetStore(cas.NewStore(config.PageStoreDir()))
	}

	pages, err := collections.Extract(context.Background())
	if err != nil {
		log.Fatalf("extraction failed: %v", err)
	}

	if !flagNoIndex {
		if err := recordPages(cfg, pages); err != nil {
			log.Fatalf("recording index: %v", err)
		}
	}
}

// extractionConfig builds the selection list: the config file when given,
// else a single selection from flags.
func extractionConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}

	if flagPackage == "" {
		return nil, errors.New("either --config or --package is required")
	}
	kind, err := rustdoc.ParseItemKind(flagKind)
	if err != nil {
		return nil, err
	}

	return &config.Config{
		OutputPath: flagOutput,
		Packages: []config.Package{{
			Name:       flagPackage,
			Version:    flagVersion,
			JSONPath:   flagJSONPath,
			ModulePath: flagModulePath,
			Kind:       kind,
		}},
	}, nil
}

func recordPages(cfg *config.Config, pages []extract.Page) error {
	index, err := db.New(config.DBPath())
	if err != nil {
		return err
	}
	defer index.Close()

	byPackage := make(map[string][]db.PageRecord)
	for _, p := range pages {
		byPackage[p.Package] = append(byPackage[p.Package], db.PageRecord{
			Path:        p.Path,
			Kind:        p.Kind,
			Caption:     p.Caption,
			File:        p.File,
			ContentHash: p.ContentHash,
		})
	}

	for _, pkg := range cfg.Packages {
		records, ok := byPackage[pkg.Name]
		if !ok {
			continue
		}
		version := pkg.Version
		if version == "" {
			version = "latest"
		}
		row, err := index.UpsertPackage(pkg.Name, version)
		if err != nil {
			return err
		}
		if err := index.ReplacePages(row.ID, records); err != nil {
			return err
		}
	}
	return nil
}
