package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the active server",
	Long:  `Clears the active profile. Saved profiles are kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()

		prev, err := a.Logout(ctx)
		if err != nil {
			log.Fatalf("Fatal: Logout failed: %v", err)
		}
		if prev == "" {
			fmt.Println("No active profile.")
			return
		}
		fmt.Printf("Logged out of profile %s.\n", prev)
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
