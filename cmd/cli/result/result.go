// Package result holds the CLI commands for inspecting stored game results.
package result

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mlahtinen/gumshoe/internal/db"
	"github.com/mlahtinen/gumshoe/internal/game"
	"github.com/mlahtinen/gumshoe/internal/nlp"
	"github.com/mlahtinen/gumshoe/internal/repositories"
	"github.com/mlahtinen/gumshoe/internal/scoring"
)

var Group = &cobra.Group{
	ID:    "result",
	Title: "Result operations",
}

func init() {
	Report.Flags().String("sqlite-url", "./gumshoe.sqlite", "SQLite database file")
	Report.Flags().String("nlp-url", "http://localhost:8000", "NLP sidecar base URL")
	Report.Flags().Float64("threshold", scoring.DefaultReportThreshold, "similarity pass threshold")
}

var Report = &cobra.Command{
	Use:     "report [result-id]",
	GroupID: "result",
	Short:   "Similarity report",
	Long:    `Recomputes the similarity report for a stored result and prints it as JSON.`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resultID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid result id %q: %v\n", args[0], err)
			return
		}
		sqliteURL, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid sqlite-url flag: %v\n", err)
			return
		}
		nlpURL, err := cmd.Flags().GetString("nlp-url")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid nlp-url flag: %v\n", err)
			return
		}
		threshold, err := cmd.Flags().GetFloat64("threshold")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid threshold flag: %v\n", err)
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

		scenarios := repositories.NewScenarioRepository(database, logger)
		sessions := repositories.NewSessionRepository(database, logger)
		results := repositories.NewResultRepository(database, logger)
		nlpClient := nlp.NewClient(nlpURL, logger)
		service := game.NewService(
			scenarios, sessions, results,
			nlpClient,
			scoring.NewEngine(nlpClient, logger),
			game.Config{ReportThreshold: threshold, OXThreshold: scoring.DefaultOXThreshold},
			logger,
		)

		ctx := context.Background()
		result, err := results.Get(ctx, resultID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load result %d: %v\n", resultID, err)
			return
		}
		report, err := service.Report(ctx, result, threshold)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "build report: %v\n", err)
			return
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(report); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		}
	},
}
