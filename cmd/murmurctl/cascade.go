package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"Murmur/internal/core/cascade"
	postgresRepo "Murmur/internal/db/postgres"
)

var cascadeCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Inspect the account deletion sequence",
}

var cascadeStepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List deletion steps in execution order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"#", "Step"})
		table.SetAutoWrapText(false)
		for _, step := range cascade.Steps {
			table.Append([]string{strconv.Itoa(int(step)), step.String()})
		}
		table.Render()
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User maintenance",
}

var (
	resumeUserID string
	resumeFrom   string
)

var resumeDeleteCmd = &cobra.Command{
	Use:   "resume-delete",
	Short: "Finish an interrupted account deletion",
	Long: `Runs the deletion sequence for --user starting at --from.

Every step is idempotent, so resuming from an earlier step than the one that
failed is safe. The user record does not need to exist any more.`,
	Args: cobra.NoArgs,
	RunE: withDB(func(cmd *cobra.Command, db *sql.DB) error {
		if resumeUserID == "" {
			return errors.New("--user is required")
		}
		from, err := cascade.ParseStep(resumeFrom)
		if err != nil {
			return err
		}

		orchestrator := cascade.NewOrchestrator(cascade.Deps{
			Users:    postgresRepo.NewUserRepository(db),
			Posts:    postgresRepo.NewPostRepository(db),
			Comments: postgresRepo.NewCommentRepository(db),
			Stories:  postgresRepo.NewStoryRepository(db),
		})

		if err := orchestrator.Resume(cmd.Context(), resumeUserID, from); err != nil {
			var stepErr *cascade.StepError
			if errors.As(err, &stepErr) {
				return fmt.Errorf("%w\nrerun with --from %s", err, stepErr.Step)
			}
			return err
		}
		printSuccess("user %s deleted (resumed from %s)", resumeUserID, from)
		return nil
	}),
}

func init() {
	resumeDeleteCmd.Flags().StringVar(&resumeUserID, "user", "", "ID of the user being deleted")
	resumeDeleteCmd.Flags().StringVar(&resumeFrom, "from", cascade.StepDeleteOwnedPosts.String(),
		"step name or number to start from (list them with: murmurctl cascade steps)")

	usersCmd.AddCommand(resumeDeleteCmd)
	cascadeCmd.AddCommand(cascadeStepsCmd)
	RootCmd.AddCommand(usersCmd, cascadeCmd)
}
