package main

import (
	"database/sql"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	postgresRepo "Murmur/internal/db/postgres"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Relationship graph maintenance",
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair one-sided follow edges and dangling user references",
	Long: `Makes followers mirror following for every user and drops IDs of users
that no longer exist from followers, following and block lists.
following is treated as authoritative.`,
	Args: cobra.NoArgs,
	RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
		report, err := postgresRepo.NewUserRepository(db).ReconcileFollowEdges(cmd.Context())
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Repair", "Entries"})
		table.Append([]string{"followers added", strconv.FormatInt(report.FollowersAdded, 10)})
		table.Append([]string{"followers removed", strconv.FormatInt(report.FollowersRemoved, 10)})
		table.Append([]string{"following removed", strconv.FormatInt(report.FollowingRemoved, 10)})
		table.Append([]string{"block list removed", strconv.FormatInt(report.BlockListRemoved, 10)})
		table.Render()

		printSuccess("follow graph reconciled")
		return nil
	}),
}

func init() {
	graphCmd.AddCommand(reconcileCmd)
	RootCmd.AddCommand(graphCmd)
}
