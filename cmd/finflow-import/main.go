package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finflow/internal/config"
	"finflow/internal/gsheet"
	"finflow/internal/ingest"
	applog "finflow/internal/log"
	"finflow/internal/services"
	"finflow/internal/storage"
	"finflow/internal/store"
	"finflow/internal/store/memory"
)

// finflow-import ingests one or more CSV files into the configured
// store, deduplicating against everything already saved. With -export
// it writes the resulting collection back out as CSV.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentIngest)
	applog.SetDefault(logger)

	exportPath := flag.String("export", "", "write the full collection as CSV to this path after importing")
	mirror := flag.Bool("mirror", false, "append imported rows to the configured Google Sheet")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 && *exportPath == "" {
		fmt.Fprintln(os.Stderr, "usage: finflow-import [-export out.csv] [-mirror] file.csv [file.csv ...]")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", applog.FieldError, err, applog.FieldPath, cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		st = repo
	default:
		st = memory.New()
		logger.Warn("Using memory backend; imported data is discarded on exit")
	}

	ctx := context.Background()
	importer := services.NewImportService(st, ingest.Options{CategoryMode: cfg.CategoryMode()})

	// Files parse concurrently; the importer serializes the
	// dedup-and-insert step so overlapping files stay consistent.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, path := range files {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			summary, rowErrs, err := importer.Import(gctx, f)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			for _, re := range rowErrs {
				logger.Warn("Rejected row", "file", path, applog.FieldLine, re.Line, applog.FieldReason, re.Reason)
			}
			logger.Info("File imported",
				"file", path,
				applog.FieldAccepted, summary.Accepted,
				applog.FieldRejected, summary.Rejected,
				applog.FieldDuplicates, summary.Duplicates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Import failed", applog.FieldError, err)
		os.Exit(1)
	}

	if *exportPath != "" {
		out, err := os.Create(*exportPath)
		if err != nil {
			logger.Error("Failed to create export file", applog.FieldError, err, applog.FieldPath, *exportPath)
			os.Exit(1)
		}
		defer out.Close()
		n, err := importer.Export(ctx, out)
		if err != nil {
			logger.Error("Export failed", applog.FieldError, err, applog.FieldPath, *exportPath)
			os.Exit(1)
		}
		logger.Info("Collection exported", applog.FieldPath, *exportPath, applog.FieldCount, n)
	}

	if *mirror {
		if !cfg.SheetsMirrorEnabled() {
			logger.Error("Mirror requested but no Google Sheets settings configured")
			os.Exit(1)
		}
		m, err := gsheet.NewMirror(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", applog.FieldError, err)
			os.Exit(1)
		}
		records, err := st.ListAll(ctx)
		if err != nil {
			logger.Error("Failed to list transactions for mirror", applog.FieldError, err)
			os.Exit(1)
		}
		if err := m.Append(ctx, records); err != nil {
			logger.Error("Mirror append failed", applog.FieldError, err)
			os.Exit(1)
		}
	}
}
