// Package scenario holds the CLI commands for authoring scenarios.
package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlahtinen/gumshoe/internal/db"
	"github.com/mlahtinen/gumshoe/internal/models"
	"github.com/mlahtinen/gumshoe/internal/repositories"
)

var Group = &cobra.Group{
	ID:    "scenario",
	Title: "Scenario operations",
}

func init() {
	Seed.Flags().String("sqlite-url", "./gumshoe.sqlite", "SQLite database file")
}

var Seed = &cobra.Command{
	Use:     "seed [content files...]",
	GroupID: "scenario",
	Short:   "Seed scenarios",
	Long:    `Inserts scenario content JSON files into the database. Title and summary are taken from the content's scenario block.`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sqliteURL, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid sqlite-url flag: %v\n", err)
			return
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		database, err := db.New(sqliteURL)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		defer func() {
			_ = database.Close()
		}()

		ctx := context.Background()
		scenarios := repositories.NewScenarioRepository(database, logger)

		for _, path := range args {
			file, err := os.Open(path)
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
				continue
			}
			contentJSON, err := io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
				continue
			}

			content, err := models.ParseCaseContent(string(contentJSON))
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
				continue
			}
			title := content.Scenario.Title
			if title == "" {
				title = models.UnknownLabel
			}

			scenIdx, err := scenarios.Insert(ctx, title, content.Scenario.Summary, string(contentJSON))
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "insert %s: %v\n", path, err)
				continue
			}
			fmt.Printf("seeded scenario %d: %s (%s)\n", scenIdx, title, path)
		}
	},
}
