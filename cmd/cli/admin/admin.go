// Package admin holds operator commands that work directly against the
// litterwatch database.
package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/repositories"
	"github.com/cleansweep/litterwatch/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "admin",
	Title: "Administration",
}

func init() {
	Promote.Flags().String("db", "", "path to the SQLite database (defaults to $LITTERWATCH_SQLITE_URL)")
	Stats.Flags().String("db", "", "path to the SQLite database (defaults to $LITTERWATCH_SQLITE_URL)")
}

func openDatabase(cmd *cobra.Command) (*sqlite.Database, error) {
	url, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, fmt.Errorf("invalid db flag: %w", err)
	}
	if url == "" {
		url = os.Getenv("LITTERWATCH_SQLITE_URL")
	}
	if url == "" {
		url = "./litterwatch.sqlite"
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return sqlite.NewDatabase(cmd.Context(), url, logger)
}

var Promote = &cobra.Command{
	Use:     "promote [username]",
	GroupID: "admin",
	Short:   "Promote a user to official",
	Long:    `Grants cleanup verification rights to an existing account`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbs, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		users := repositories.NewUserRepository(dbs, logger)
		username := args[0]
		if err = users.SetRole(cmd.Context(), username, models.RoleOfficial); err != nil {
			return fmt.Errorf("promote %s: %w", username, err)
		}
		cmd.Printf("%s is now an official\n", username)
		return nil
	},
}

var Stats = &cobra.Command{
	Use:     "stats",
	GroupID: "admin",
	Short:   "Print report counters",
	Long:    `Prints the same counters the analytics endpoint serves`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbs, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		reports := repositories.NewReportRepository(dbs, logger)
		activeSince := time.Now().UTC().Add(-10 * 24 * time.Hour)
		analytics, err := reports.GetAnalytics(context.Background(), activeSince)
		if err != nil {
			return fmt.Errorf("load analytics: %w", err)
		}

		cmd.Printf("pending reports:   %d\n", analytics.PendingCount)
		cmd.Printf("completed reports: %d\n", analytics.CompletedCount)
		cmd.Printf("verified reports:  %d\n", analytics.VerifiedCount)
		cmd.Printf("active citizens:   %d\n", analytics.ActiveCitizens)
		return nil
	},
}
