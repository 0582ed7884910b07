package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fornitori/internal/backend"
	"fornitori/internal/backup"
	"fornitori/internal/cli"
	"fornitori/internal/services"
)

func main() {
	exportPath := flag.String("export", "", "write a full backup document to `FILE`")
	importPath := flag.String("import", "", "replace the whole dataset with the document in `FILE`")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "usage: fornitori-backup -export FILE | -import FILE")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ApplyLogLevel(cfg.LogLevel)

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backend.FromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	// Going through the service keeps the side effects of the API paths:
	// a restore publishes a change event, so running mirrors re-snapshot.
	var events services.EventPublisher
	if result.Events != nil {
		events = result.Events
	}
	ledger := services.NewLedgerService(result.Gateway, events)

	ctx := context.Background()
	switch {
	case *exportPath != "":
		if err := runExport(ctx, ledger, *exportPath); err != nil {
			logger.Error("Export failed", "error", err, "file", *exportPath)
			os.Exit(1)
		}
	case *importPath != "":
		if cfg.DataBackend == "memory" {
			logger.Warn("Memory backend is process-local - imported data is gone when this command exits")
		}
		if err := runImport(ctx, ledger, *importPath); err != nil {
			logger.Error("Import failed", "error", err, "file", *importPath)
			os.Exit(1)
		}
	}
}

func runExport(ctx context.Context, ledger *services.LedgerService, path string) error {
	doc, err := ledger.Export(ctx)
	if err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}

	fmt.Printf("Exported %d suppliers and %d invoices to %s\n",
		len(doc.Suppliers), len(doc.Invoices), path)
	return nil
}

func runImport(ctx context.Context, ledger *services.LedgerService, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}
	doc, err := backup.Decode(data)
	if err != nil {
		return err
	}
	if err := ledger.Import(ctx, doc); err != nil {
		return err
	}

	fmt.Printf("Restored %d suppliers and %d invoices from %s\n",
		len(doc.Suppliers), len(doc.Invoices), path)
	return nil
}
