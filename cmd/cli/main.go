package main

import (
	"fmt"
	"os"

	"github.com/crucial707/screentime/cmd/cli/auth"
	"github.com/crucial707/screentime/cmd/cli/leaderboard"
	"github.com/crucial707/screentime/cmd/cli/root"
	"github.com/crucial707/screentime/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	users.InitUsers(rootCmd)
	leaderboard.InitLeaderboard(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
