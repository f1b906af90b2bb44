// Command murmurctl runs maintenance tasks against the Postgres store:
// migrations, resuming interrupted account deletions and follow-edge repair.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"Murmur/internal/config"
)

var databaseURL string

// RootCmd is the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "murmurctl [command] [flags]",
	Short:         "Murmur maintenance tool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.LoadDotEnvs()
	RootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"),
		"Postgres connection string (defaults to $DATABASE_URL)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("Error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}

// openDB connects to the database named by --database-url
func openDB(ctx context.Context) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("no database configured; set DATABASE_URL or pass --database-url")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func printSuccess(format string, args ...any) {
	fmt.Println(color.New(color.FgGreen, color.Bold).Sprint("✓ ") + fmt.Sprintf(format, args...))
}
