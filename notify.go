package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newNotifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Email every user the tasks due tomorrow",
		Long: "Runs the reminder job once and prints {status_code, body} as JSON.\n" +
			"Intended for cron or a serverless timer; exits non-zero when any send fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.ValidateNotifier(); err != nil {
				return a.fail("Invalid notifier configuration", err)
			}

			db, err := a.openDatabase(cmd.Context())
			if err != nil {
				return a.fail("Database setup failed", err)
			}
			defer db.Close()

			reminders, err := a.newScheduler(db)
			if err != nil {
				return a.fail("Scheduler setup failed", err)
			}

			result := reminders.RunResult(cmd.Context())
			out, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if result.StatusCode != http.StatusOK {
				return fmt.Errorf("notification run failed: %s", result.Body)
			}
			return nil
		},
	}
}
