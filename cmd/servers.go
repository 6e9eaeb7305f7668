package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bluecherry-cli/internal/app"
	"bluecherry-cli/pkg/models"
)

var (
	dateFormat    string
	notifications string
	pushToken     string
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage saved server profiles",
}

type serverRow struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Address       string `json:"address" yaml:"address"`
	Port          string `json:"port" yaml:"port"`
	Login         string `json:"login" yaml:"login"`
	ServerUUID    string `json:"serverUUID,omitempty" yaml:"serverUUID,omitempty"`
	DateFormat    string `json:"dateFormat" yaml:"dateFormat"`
	Notifications bool   `json:"notifications" yaml:"notifications"`
	Active        bool   `json:"active" yaml:"active"`
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved server profiles",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()

		s := a.Session.Snapshot()
		activeID := ""
		if s.ActiveAccount != nil {
			activeID = s.ActiveAccount.ID
		}

		rows := make([]serverRow, 0, len(s.AccountList))
		for _, e := range s.AccountList {
			rows = append(rows, serverRow{
				ID:            e.ID,
				Name:          e.Record.Name,
				Address:       e.Record.Address,
				Port:          e.Record.Port,
				Login:         e.Record.Login,
				ServerUUID:    e.Record.ServerUUID,
				DateFormat:    e.Record.DateFormat,
				Notifications: e.Record.NotificationPermissionGranted,
				Active:        e.ID == activeID,
			})
		}

		if printStructured(rows) {
			return
		}
		if len(rows) == 0 {
			fmt.Println("No saved servers. Run 'bluecherry-cli login' to add one.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, " \tID\tNAME\tADDRESS\tLOGIN\tNOTIFY")
		fmt.Fprintln(w, " \t--\t----\t-------\t-----\t------")
		for _, r := range rows {
			marker := " "
			if r.Active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s:%s\t%s\t%t\n", marker, r.ID, r.Name, r.Address, r.Port, r.Login, r.Notifications)
		}
		w.Flush()
	},
}

var serversEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a saved server profile",
	Long:  `Changes the given fields of a profile. The credentials are checked against the server before saving.`,
	Example: `  bluecherry-cli servers edit --id 12345 --password newsecret`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()

		existing, err := a.Accounts.Get(ctx, accountID)
		if err != nil {
			log.Fatalf("Error reading profile: %v", err)
		}
		if existing == nil {
			log.Fatalf("Error: no profile with id %s", accountID)
		}

		rec := *existing
		flags := cmd.Flags()
		if flags.Changed("address") {
			rec.Address = address
		}
		if flags.Changed("port") {
			rec.Port = port
		}
		if flags.Changed("rtsp-address") {
			rec.RTSPAddress = rtspAddress
		}
		if flags.Changed("rtsp-port") {
			rec.RTSPPort = rtspPort
		}
		if flags.Changed("username") {
			rec.Login = user
		}
		if flags.Changed("password") {
			rec.Password = pass
		}
		if flags.Changed("name") {
			rec.Name = serverName
		}

		if err := a.UpdateAccount(ctx, accountID, rec); err != nil {
			log.Fatalf("Error updating profile: %v", err)
		}
		fmt.Printf("Profile %s updated.\n", accountID)
	},
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete a saved server profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()

		ok, err := a.RemoveAccount(ctx, accountID)
		if err != nil {
			log.Fatalf("Error removing profile: %v", err)
		}
		if !ok {
			fmt.Printf("No profile with id %s.\n", accountID)
			os.Exit(1)
		}
		fmt.Printf("Profile %s removed.\n", accountID)
	},
}

var serversSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change the settings of the active profile",
	Example: `  bluecherry-cli servers settings --date-format "YYYY-MM-DD HH:mm:ss"
  bluecherry-cli servers settings --notifications on --token <push token>`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, cfg := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		var s app.Settings
		if cmd.Flags().Changed("date-format") {
			s.DateFormat = &dateFormat
		}
		if cmd.Flags().Changed("notifications") {
			var on bool
			switch notifications {
			case "on", "true", "yes":
				on = true
			case "off", "false", "no":
			default:
				log.Fatalf("Error: --notifications must be on or off, got %q", notifications)
			}
			s.Notifications = &on
		}
		s.Token = pushToken
		if s.Token == "" {
			s.Token = cfg.Push.Token
		}

		rec, err := a.UpdateSettings(ctx, s)
		if err != nil {
			log.Fatalf("Error saving settings: %v", err)
		}

		if printStructured(rec) {
			return
		}
		fmt.Printf("Date format: %s\nNotifications: %t\n", rec.DateFormat, rec.NotificationPermissionGranted)
	},
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversEditCmd)
	serversCmd.AddCommand(serversRemoveCmd)
	serversCmd.AddCommand(serversSettingsCmd)

	addServerFlags(serversEditCmd)
	serversEditCmd.Flags().StringVar(&accountID, "id", "", "Profile ID")
	_ = serversEditCmd.MarkFlagRequired("id")

	serversRemoveCmd.Flags().StringVar(&accountID, "id", "", "Profile ID")
	_ = serversRemoveCmd.MarkFlagRequired("id")

	serversSettingsCmd.Flags().StringVar(&dateFormat, "date-format", models.DefaultDateFormat, "Timestamp format (e.g. M-D-YY h:m:s A)")
	serversSettingsCmd.Flags().StringVar(&notifications, "notifications", "", "Push notifications: on or off")
	serversSettingsCmd.Flags().StringVar(&pushToken, "token", "", "Push token to register (default push.token)")
}
