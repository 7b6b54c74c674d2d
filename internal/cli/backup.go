package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/entrypoint"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore the library",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup archive",
	Long: `Writes documents, highlights, notes, progress and chapters to a JSON archive.
Without --out the archive goes to BACKUP_DIR and old archives beyond
BACKUP_RETAIN are removed.`,
	Args: cobra.NoArgs,
	RunE: runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore a backup archive",
	Long: `Restores an archive. The lww strategy merges records by last write; replace
overwrites the reader state of every document in the archive.`,
	Args: cobra.NoArgs,
	RunE: runBackupImport,
}

var (
	backupOut      string
	importFile     string
	importStrategy string
)

func init() {
	backupExportCmd.Flags().StringVarP(&backupOut, "out", "o", "", "Write the archive to this file instead of the backup directory")
	backupImportCmd.Flags().StringVarP(&importFile, "file", "f", "", "Archive to restore")
	backupImportCmd.Flags().StringVar(&importStrategy, "strategy", string(backup.StrategyLWW), "Merge strategy: lww or replace")
	_ = backupImportCmd.MarkFlagRequired("file")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}

func runBackupExport(cmd *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, app *entrypoint.App) error {
		if backupOut == "" {
			path, err := app.WriteBackup(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("Backup written to %s\n", path)
			return nil
		}

		archive, err := app.Backup.Export(ctx)
		if err != nil {
			return err
		}
		f, err := os.Create(backupOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", backupOut, err)
		}
		defer f.Close()
		if err := backup.Encode(f, archive); err != nil {
			return err
		}
		cmd.Printf("Backup of %d documents written to %s\n", len(archive.Documents), backupOut)
		return nil
	})
}

func runBackupImport(cmd *cobra.Command, _ []string) error {
	strategy, err := backup.ParseStrategy(importStrategy)
	if err != nil {
		return err
	}
	archive, err := backup.ReadFile(importFile)
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, app *entrypoint.App) error {
		summary, err := app.Backup.Import(ctx, archive, strategy)
		if err != nil {
			return err
		}
		cmd.Printf("Restored %d documents (%d new) with %s\n", summary.Documents, summary.CreatedDocuments, strategy)
		cmd.Printf("  Highlights:  %d\n", summary.Highlights)
		cmd.Printf("  Annotations: %d\n", summary.Annotations)
		cmd.Printf("  Notes:       %d\n", summary.Notes)
		return nil
	})
}
