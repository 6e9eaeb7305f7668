package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"bluecherry-cli/internal/app"
	"bluecherry-cli/pkg/models"
)

// Variables to hold flag values
var (
	address     string
	port        string
	rtspAddress string
	rtspPort    string
	user        string
	pass        string
	serverName  string
	accountID   string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Connect to a Bluecherry server",
	Long: `Connects to a new server and saves it as a profile, or logs into a saved
profile with --id. The profile becomes the active one for later commands.

Example:
  bluecherry-cli login --address nvr.local --name Home --password secret
  bluecherry-cli login --id 12345`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()

		if accountID != "" {
			if err := a.SwitchAccount(ctx, accountID); err != nil {
				log.Fatalf("Fatal: Login failed: %v", err)
			}
			fmt.Printf("Logged in to profile %s.\n", accountID)
			return
		}

		if address == "" || serverName == "" {
			log.Fatal("Error: --address and --name are required to connect a new server (or use --id).")
		}

		rec := models.NewAccountRecord(address, serverName)
		rec.Port = port
		rec.RTSPAddress = rtspAddress
		rec.RTSPPort = rtspPort
		rec.Login = user
		rec.Password = pass

		fmt.Printf("Authenticating against %s as user '%s'...\n", rec.BaseURL(), rec.Login)

		id, err := a.Connect(ctx, rec)
		if err != nil {
			if errors.Is(err, app.ErrAuthFailed) {
				log.Fatal("Fatal: Login failed.")
			}
			log.Fatalf("Fatal: Login failed: %v", err)
		}

		fmt.Printf("Profile %s saved. You can now run commands like 'bluecherry-cli cameras list'.\n", id)
	},
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&address, "address", "", "Server address (host name or IP)")
	cmd.Flags().StringVar(&port, "port", models.DefaultPort, "Management port")
	cmd.Flags().StringVar(&rtspAddress, "rtsp-address", "", "RTSP address (defaults to the server address)")
	cmd.Flags().StringVar(&rtspPort, "rtsp-port", models.DefaultRTSPPort, "RTSP port")
	cmd.Flags().StringVarP(&user, "username", "u", models.DefaultLogin, "Login")
	cmd.Flags().StringVarP(&pass, "password", "p", models.DefaultPassword, "Password")
	cmd.Flags().StringVar(&serverName, "name", "", "Profile name")
}

func init() {
	rootCmd.AddCommand(loginCmd)

	addServerFlags(loginCmd)
	loginCmd.Flags().StringVar(&accountID, "id", "", "Log into a saved profile instead of connecting a new server")
}
