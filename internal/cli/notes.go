package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/deepread/internal/entrypoint"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List, export and repair notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runNotesList,
}

var notesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export highlights and notes as markdown, one file per document",
	Args:  cobra.NoArgs,
	RunE:  runNotesExport,
}

var notesReconcileCmd = &cobra.Command{
	Use:   "reconcile [doc-id]",
	Short: "Drop annotations whose highlight is gone",
	Long:  `Repairs stored highlights of one document, or of every document when no id is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotesReconcile,
}

var (
	notesDocument string
	exportDir     string
)

func init() {
	notesListCmd.Flags().StringVarP(&notesDocument, "document", "d", "", "Only notes taken in this document")
	notesExportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory, defaults to MARKDOWN_EXPORT_DIR")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesExportCmd)
	notesCmd.AddCommand(notesReconcileCmd)
	rootCmd.AddCommand(notesCmd)
}

func runNotesList(cmd *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, app *entrypoint.App) error {
		notes := app.Highlights.ListNotesForUser(ctx)
		if notesDocument != "" {
			notes = app.Highlights.ListNotesForDocument(ctx, notesDocument)
		}
		if len(notes) == 0 {
			cmd.Println("No notes found")
			return nil
		}
		for _, n := range notes {
			cmd.Printf("[%s] %s\n", n.Date, n.BookID)
			cmd.Printf("  > %s\n", n.Quote)
			if n.Thought != "" {
				cmd.Printf("  %s\n", n.Thought)
			}
		}
		cmd.Printf("\nTotal: %d notes\n", len(notes))
		return nil
	})
}

func runNotesExport(cmd *cobra.Command, _ []string) error {
	dir := exportDir
	if dir == "" {
		dir = cfg.Export.MarkdownDir
	}
	return withApp(func(ctx context.Context, app *entrypoint.App) error {
		result, err := app.Library.ExportAll(ctx, dir)
		if err != nil {
			return err
		}
		cmd.Printf("Exported %d documents (%d highlights) to %s\n", result.DocumentsProcessed, result.HighlightsProcessed, dir)
		if result.DocumentsFailed > 0 {
			return fmt.Errorf("%d documents failed to export", result.DocumentsFailed)
		}
		return nil
	})
}

func runNotesReconcile(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, app *entrypoint.App) error {
		var ids []string
		if len(args) == 1 {
			ids = args
		} else {
			docs, err := app.Documents.List()
			if err != nil {
				return err
			}
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
		}

		total := 0
		for _, id := range ids {
			n, err := app.Highlights.Reconcile(ctx, id)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", id, err)
			}
			total += n
		}
		cmd.Printf("Repaired %d records in %d documents\n", total, len(ids))
		return nil
	})
}
