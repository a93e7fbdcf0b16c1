package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/nerd/internal/config"
	"github.com/conorfennell/nerd/internal/export"
	"github.com/conorfennell/nerd/internal/importer"
)

func newImportCmd(app *App) *cobra.Command {
	var topicID int64
	cmd := &cobra.Command{
		Use:   "import SOURCE",
		Short: "Create cards from Markdown notes in a directory or git repository",
		Long: `Import reads every .md file under SOURCE. A card is a "Q:" block with an
optional "A:" block and an optional "T:" title line; cards are separated by
"---" or by the next "Q:". Cards already present in the topic are skipped.
A git URL is cloned into the import cache directory, or pulled when present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			im := importer.New(client.Cards(), app.Config.Import.CacheDir, app.Logger)
			im.Progress = cmd.ErrOrStderr()
			report, err := im.Import(cmd.Context(), topicID, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d cards in %d files: %d created, %d skipped, %d errors.\n",
				report.Parsed, report.Files, report.Created, report.Skipped, len(report.Errors))
			if len(report.Errors) > 0 {
				fmt.Fprintln(out, "\nErrors:")
				for _, e := range report.Errors {
					fmt.Fprintf(out, "- %s\n", e)
				}
				return errors.New("some cards were not imported")
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&topicID, "topic", 0, "Topic receiving the cards")
	_ = cmd.MarkFlagRequired("topic")
	cmd.Flags().String("cache-dir", config.Default.Import.CacheDir, "Directory holding git checkouts")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every topic and card to a file, S3 or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			snap, err := export.Take(cmd.Context(), client.Topics(), client.Cards())
			if err != nil {
				return err
			}
			format := app.Config.Export.Format
			if out == "" {
				return snap.Encode(cmd.OutOrStdout(), format)
			}

			var buf bytes.Buffer
			if err := snap.Encode(&buf, format); err != nil {
				return err
			}
			sink, err := export.NewSink(cmd.Context(), out, app.Config.Export.S3)
			if err != nil {
				return err
			}
			if err := sink.Put(cmd.Context(), buf.Bytes(), export.ContentType(format)); err != nil {
				return err
			}
			app.Logger.Info("Snapshot exported", "target", sink.String(), "topics", len(snap.Topics), "cards", snap.CardCount())
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d topics and %d cards to %s\n", len(snap.Topics), snap.CardCount(), sink)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Target file or s3://bucket/key (default stdout)")
	cmd.Flags().String("format", config.Default.Export.Format, "Snapshot format (json|yaml)")
	return cmd
}
