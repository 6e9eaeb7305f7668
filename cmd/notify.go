package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bluecherry-cli/internal/app"
	"bluecherry-cli/internal/config"
	"bluecherry-cli/internal/logger"
	"bluecherry-cli/internal/push"
	"bluecherry-cli/internal/router"
	"bluecherry-cli/pkg/models"
)

var (
	transport    string
	saveToken    bool
	notifyServer string
	notifyDevice string
	notifyName   string
	notifyType   string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Receive and route push notifications",
}

func printDecision(d router.Decision) {
	fmt.Printf("%s account=%s device=%s %s\n", d.Outcome, d.AccountID, d.DeviceID, d.Reason)
}

var notifyListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Route notifications from the push transport until interrupted",
	Long: `Subscribes to the configured MQTT topic or NATS subject. Each message is a
notification payload; it is routed to the matching server profile and the
live address of the camera is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cfg := openApp(ctx, app.PrintNavigator{Out: os.Stdout})
		defer a.Close()

		if transport == "" {
			transport = cfg.Push.Transport
		}

		var src push.Source
		switch transport {
		case config.TransportMQTT:
			src = push.NewMQTTSource(cfg.Push.MQTT, logger.GetLogger())
		case config.TransportNATS:
			src = push.NewNATSSource(cfg.Push.NATS, logger.GetLogger())
		default:
			log.Fatalf("Error: unknown transport %q", transport)
		}

		if viper.ConfigFileUsed() != "" {
			config.WatchLogLevel(viper.GetViper())
		}

		if cfg.Push.Token != "" {
			if _, err := a.RefreshToken(ctx, cfg.Push.Token); err != nil {
				log.Printf("Warning: token refresh failed: %v", err)
			}
		}

		err := src.Start(ctx, func(ctx context.Context, p models.NotificationPayload) {
			d, err := a.HandleNotification(ctx, p)
			if err != nil {
				l := logger.GetLogger()
				l.Warn().Err(err).Msg("notification handling failed")
			}
			if jsonOutput || yamlOutput {
				printStructured(d)
				return
			}
			printDecision(d)
		})
		if err != nil {
			log.Fatalf("Error starting %s listener: %v", transport, err)
		}

		fmt.Printf("Listening for notifications via %s. Press Ctrl+C to stop.\n", transport)
		<-ctx.Done()
		src.Stop()
	},
}

var notifyRefreshCmd = &cobra.Command{
	Use:   "refresh-token",
	Short: "Register the push token with every saved server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, cfg := openApp(ctx, nil)
		defer a.Close()

		token := pushToken
		if token == "" {
			token = cfg.Push.Token
		}
		if token == "" {
			log.Fatal("Error: no push token; pass --token or set push.token.")
		}

		failed, err := a.RefreshToken(ctx, token)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if saveToken {
			if err := config.SavePushToken(token); err != nil {
				log.Fatalf("Failed to save configuration file: %v", err)
			}
		}

		total := len(a.Session.Snapshot().AccountList)
		fmt.Printf("Token registered with %d of %d server(s).\n", total-failed, total)
		if failed > 0 {
			os.Exit(1)
		}
	},
}

var notifyRouteCmd = &cobra.Command{
	Use:   "route",
	Short: "Route a single notification payload",
	Example: `  bluecherry-cli notify route --server-id 5f1c... --device-id 7 --event-type motion_event`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, app.PrintNavigator{Out: os.Stdout})
		defer a.Close()

		d, err := a.HandleNotification(ctx, models.NotificationPayload{
			ServerID:   notifyServer,
			DeviceID:   notifyDevice,
			DeviceName: notifyName,
			EventType:  notifyType,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if printStructured(d) {
			return
		}
		printDecision(d)
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyListenCmd)
	notifyCmd.AddCommand(notifyRefreshCmd)
	notifyCmd.AddCommand(notifyRouteCmd)

	notifyListenCmd.Flags().StringVar(&transport, "transport", "", "Push transport: mqtt or nats (default push.transport)")

	notifyRefreshCmd.Flags().StringVar(&pushToken, "token", "", "Push token (default push.token)")
	notifyRefreshCmd.Flags().BoolVar(&saveToken, "save", false, "Save the token to the config file")

	notifyRouteCmd.Flags().StringVar(&notifyServer, "server-id", "", "Server UUID")
	notifyRouteCmd.Flags().StringVar(&notifyDevice, "device-id", "", "Device ID")
	notifyRouteCmd.Flags().StringVar(&notifyName, "device-name", "", "Device name")
	notifyRouteCmd.Flags().StringVar(&notifyType, "event-type", models.EventTypeMotion, "Event type")
	_ = notifyRouteCmd.MarkFlagRequired("server-id")
	_ = notifyRouteCmd.MarkFlagRequired("device-id")
}
