package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmat/rollbook-backend/internal/db"
	"github.com/openmat/rollbook-backend/internal/modules/journal/importer"
	"github.com/openmat/rollbook-backend/internal/platform/logger"
	"github.com/openmat/rollbook-backend/internal/repos"
	"github.com/openmat/rollbook-backend/internal/services"
	"github.com/openmat/rollbook-backend/internal/types"
	"github.com/openmat/rollbook-backend/internal/vocab"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rollbook",
		Short: "Training journal extraction and legacy import tooling",
	}
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(importPreviewCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_MODE"))
}

func extractCmd() *cobra.Command {
	var quickAdd, shared, private string
	var mentions []string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run structured-metadata extraction over journal text",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			tables, err := vocab.Load()
			if err != nil {
				return err
			}
			svc := services.NewExtractionService(tables, log)
			result, err := svc.Extract(context.Background(), types.JournalInput{
				QuickAddNotes:  quickAdd,
				SharedSection:  shared,
				PrivateSection: private,
				RawMentions:    mentions,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&quickAdd, "quick-add", "", "quick-add notes")
	cmd.Flags().StringVar(&shared, "shared", "", "shared section text")
	cmd.Flags().StringVar(&private, "private", "", "private section text")
	cmd.Flags().StringArrayVar(&mentions, "mention", nil, "raw technique mention (repeatable)")
	return cmd
}

func importPreviewCmd() *cobra.Command {
	var sourceType, athleteID, capturedAt, mode string
	var useDB bool

	cmd := &cobra.Command{
		Use:   "import-preview [file]",
		Short: "Preview a legacy journal import without committing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			raw, err := readInput(args[0])
			if err != nil {
				return err
			}
			tables, err := vocab.Load()
			if err != nil {
				return err
			}

			var reader importer.EntryReader = offlineEntryReader{}
			if useDB {
				pg, err := db.NewPostgresService(log)
				if err != nil {
					return err
				}
				reader = repos.NewEntryReader(repos.NewTrainingEntryRepo(pg.DB(), log))
			}

			builder := importer.NewBuilder(reader, tables, importer.LoadConfigFromEnv())
			preview, err := builder.BuildPreview(context.Background(), athleteID, types.LegacyImportRequest{
				SourceType: types.ImportSourceType(sourceType),
				RawContent: raw,
				CapturedAt: capturedAt,
				Mode:       types.ImportMode(mode),
			})
			if err != nil {
				return err
			}
			return printJSON(preview)
		},
	}
	cmd.Flags().StringVar(&sourceType, "source", "markdown", "source type: markdown|plain_text|quick_note")
	cmd.Flags().StringVar(&athleteID, "athlete", "", "athlete id (uuid)")
	cmd.Flags().StringVar(&capturedAt, "captured-at", "", "capture time, ISO-8601 UTC")
	cmd.Flags().StringVar(&mode, "mode", "heuristic", "import mode: heuristic|strict")
	cmd.Flags().BoolVar(&useDB, "db", false, "check dedup/conflict against the configured postgres")
	_ = cmd.MarkFlagRequired("athlete")
	return cmd
}

func readInput(path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// offlineEntryReader previews imports with no stored entries to compare
// against; dedup and conflict checks see an empty journal.
type offlineEntryReader struct{}

func (offlineEntryReader) ByContentHash(context.Context, string, string) ([]types.EntryRecord, error) {
	return nil, nil
}

func (offlineEntryReader) RecentByAthlete(context.Context, string, int) ([]types.EntryRecord, error) {
	return nil, nil
}
