package users

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/screentime/cmd/cli/api"
	"github.com/crucial707/screentime/cmd/cli/output"
	"github.com/crucial707/screentime/internal/models"
)

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	rootCmd.AddCommand(meCmd(), recordCmd())
}

type meResponse struct {
	User       models.User              `json:"user"`
	Tokens     int                      `json:"tokens"`
	ScreenTime []models.ScreenTimeEntry `json:"screen_time"`
}

// ==========================
// Me
// ==========================
func meCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show your token balance and recorded screen time",
		RunE: func(cmd *cobra.Command, args []string) error {
			var me meResponse
			if err := api.CallAuthed("GET", "/v1/me", nil, &me); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), me)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %d tokens\n", me.User.Username, me.User.Role, me.Tokens)
			rows := make([][]interface{}, 0, len(me.ScreenTime))
			for _, e := range me.ScreenTime {
				rows = append(rows, []interface{}{e.Week.Format("2006-01-02"), e.Minutes})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Week", "Minutes"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}

// ==========================
// Record
// ==========================
func recordCmd() *cobra.Command {
	var week string
	var minutes int

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record your screen time for a week",
		Long:  "Record total minutes of screen time for the week containing --week (YYYY-MM-DD, default today). Recording the same week again replaces the value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if week == "" {
				week = time.Now().UTC().Format("2006-01-02")
			}
			if minutes < 0 {
				return fmt.Errorf("--minutes must not be negative")
			}

			var entry models.ScreenTimeEntry
			payload := map[string]interface{}{"week": week, "minutes": minutes}
			if err := api.CallAuthed("POST", "/v1/screen-time", payload, &entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d minutes for week of %s\n", entry.Minutes, entry.Week.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&week, "week", "", "Any date in the week (YYYY-MM-DD)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Total minutes of screen time")
	_ = cmd.MarkFlagRequired("minutes")
	return cmd
}
