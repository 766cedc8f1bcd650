package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sapflow/internal/cli"
	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/config"
	"github.com/Veraticus/sapflow/internal/importer"
)

type importFunc func(ctx context.Context, im *importer.Importer, r io.Reader) (importer.Result, error)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import imputations and reference tables",
		Long: `Load spreadsheet exports (CSV, ';' or ',' delimited, UTF-8 or Windows-1252)
into the local database.

Imputations are the reported labor hours to assign. Orders, areas,
extra cycles and projects are the reference tables the resolver matches
them against.`,
	}

	cmd.AddCommand(importFileCmd("imputations", "Import reported labor hours",
		func(ctx context.Context, im *importer.Importer, r io.Reader) (importer.Result, error) {
			return im.ImportImputations(ctx, r)
		}))
	cmd.AddCommand(importOrdersCmd())
	cmd.AddCommand(importFileCmd("areas", "Import the area catalog",
		func(ctx context.Context, im *importer.Importer, r io.Reader) (importer.Result, error) {
			return im.ImportAreas(ctx, r)
		}))
	cmd.AddCommand(importFileCmd("extra-cycles", "Import extra-cycle mappings",
		func(ctx context.Context, im *importer.Importer, r io.Reader) (importer.Result, error) {
			return im.ImportExtraCycles(ctx, r)
		}))
	cmd.AddCommand(importFileCmd("projects", "Import project code mappings",
		func(ctx context.Context, im *importer.Importer, r io.Reader) (importer.Result, error) {
			return im.ImportProjects(ctx, r)
		}))

	return cmd
}

func importFileCmd(kind, short string, run importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportFile(cmd.Context(), kind, args[0], run)
		},
	}
}

func importOrdersCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "orders <file>",
		Short: "Import the SAP order catalog",
		Long: `Import SAP production orders.

Orders already active with the same order, OA, project, area, vertex and
car number are skipped. With --replace-projects every active order of the
projects present in the file is deactivated first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportFile(cmd.Context(), "orders", args[0],
				func(ctx context.Context, im *importer.Importer, r io.Reader) (importer.Result, error) {
					return im.ImportOrders(ctx, r, importer.OrderOptions{ReplaceProjects: replace})
				})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace-projects", false, "Deactivate existing orders of imported projects")

	return cmd
}

func runImportFile(ctx context.Context, kind, path string, run importFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, err := os.Open(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Cannot open %s", path), err)
	}
	defer func() { _ = file.Close() }()

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	im := importer.New(store, importerOptions(cfg))

	slog.Info("📥 Importing "+kind, "file", path)
	result, err := run(ctx, im, file)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", kind, err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d %s rows", result.Imported, result.Read, kind)))
	if result.Skipped > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d rows skipped (run with --log-level debug for details)", result.Skipped)))
	}
	if result.Deactivated > 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("%d previous orders deactivated", result.Deactivated)))
	}
	return nil
}

func importerOptions(cfg config.Config) importer.Options {
	return importer.Options{
		TaskAliases: cfg.TaskAliases,
		Factory:     cfg.Factory,
	}
}
