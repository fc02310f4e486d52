package leaderboard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/screentime/cmd/cli/api"
	"github.com/crucial707/screentime/cmd/cli/output"
	"github.com/crucial707/screentime/internal/models"
)

// InitLeaderboard registers leaderboard and award on the root command.
func InitLeaderboard(rootCmd *cobra.Command) {
	rootCmd.AddCommand(leaderboardCmd(), awardCmd())
}

func leaderboardCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show users ranked by screen time reduction",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Items []models.Standing `json:"items"`
				Total int               `json:"total"`
			}
			if err := api.Call("GET", "/v1/leaderboard", "", nil, &resp); err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), resp.Items)
			}

			rows := make([][]interface{}, 0, len(resp.Items))
			for _, s := range resp.Items {
				reduction := "-"
				if s.Reduction != nil {
					reduction = fmt.Sprint(*s.Reduction)
				}
				rows = append(rows, []interface{}{s.Rank, s.Username, reduction})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"#", "User", "Reduction (min)"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	return cmd
}

func awardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "award",
		Short: "Run the weekly token award pass (admin only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res models.AwardResult
			if err := api.CallAuthed("POST", "/v1/admin/award", nil, &res); err != nil {
				return err
			}
			if res.Week == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No screen time recorded yet; nothing awarded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Week %s vs %s: %d users awarded %d tokens, %d already awarded\n",
				res.Week, res.PreviousWeek, res.UsersAwarded, res.TokensAwarded, res.UsersSkipped)
			return nil
		},
	}
}
