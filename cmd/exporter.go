package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"bluecherry-cli/internal/client"
	"bluecherry-cli/internal/config"
	"bluecherry-cli/internal/logger"
	"bluecherry-cli/internal/metrics"
	"bluecherry-cli/internal/store"
	"bluecherry-cli/pkg/models"
)

// Variables to hold flag values
var (
	expAccountID  string
	expPort       string
	serviceAction string // "install", "uninstall", "start", "stop"
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	exit     chan struct{}
	server   *http.Server
	api      *client.BluecherryClient
	account  models.AccountRecord
	port     string
	scrapeTO time.Duration
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	p.exit = make(chan struct{})
	go p.run()
	return nil
}

func (p *program) run() {
	lg := logger.WithComponent("exporter")

	lg.Info().Str("server", p.account.BaseURL()).Msg("attempting initial login")
	ctx, cancel := context.WithTimeout(context.Background(), p.scrapeTO)
	_, err := p.api.Login(ctx, p.account.Login, p.account.Password)
	cancel()
	if err != nil {
		lg.Error().Err(err).Msg("initial login failed")
		// Exit so the service manager attempts a restart.
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	collector := &metrics.Collector{
		Client:   p.api,
		Login:    p.account.Login,
		Password: p.account.Password,
		Timeout:  p.scrapeTO,
		Logger:   lg,
	}
	registry.MustRegister(collector)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	addr := fmt.Sprintf(":%s", p.port)
	p.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lg.Info().Str("addr", addr).Msg("Bluecherry exporter listening")
	if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error().Err(err).Msg("HTTP server error")
	}
}

func (p *program) Stop(s service.Service) error {
	// Stop should not block. Signal the app to stop.
	l := logger.WithComponent("exporter")
	l.Info().Msg("stopping service")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}
	close(p.exit)
	return nil
}

// exporterAccount resolves the profile to export: --id or the active one.
func exporterAccount(ctx context.Context, cfg config.Config) (string, models.AccountRecord) {
	kv, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("Error opening account store: %v", err)
	}
	accounts := store.NewAccountStore(kv, logger.GetLogger())
	defer accounts.Close()

	id := expAccountID
	if id == "" {
		if id, err = accounts.GetActive(ctx); err != nil {
			log.Fatalf("Error reading active profile: %v", err)
		}
	}
	if id == "" {
		log.Fatal("Error: no active profile; pass --id or run 'bluecherry-cli login' first.")
	}

	rec, err := accounts.Get(ctx, id)
	if err != nil {
		log.Fatalf("Error reading profile: %v", err)
	}
	if rec == nil {
		log.Fatalf("Error: no profile with id %s", id)
	}
	return id, *rec
}

// --- COMMAND ---

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Start Prometheus Exporter service",
	Long: `Starts a long-running HTTP server that exposes the devices and events of a
saved Bluecherry server profile as Prometheus metrics.
Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal(err)
		}
		if !cmd.Flags().Changed("port") {
			expPort = cfg.Exporter.Port
		}

		id, rec := exporterAccount(context.Background(), cfg)

		svcConfig := &service.Config{
			Name:        "bluecherry-exporter",
			DisplayName: "Bluecherry Prometheus Exporter",
			Description: "Exposes Bluecherry server metrics to Prometheus",
			// Arguments passed to the binary when run as a service
			Arguments: []string{
				"exporter",
				"--id", id,
				"--port", expPort,
			},
		}
		if cfgFile != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgFile)
		}

		timeout := cfg.Client.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		prg := &program{
			api: client.New(client.ClientConfig{
				BaseURL:     rec.BaseURL(),
				InsecureTLS: cfg.Client.InsecureTLS,
				Timeout:     cfg.Client.Timeout,
			}),
			account:  rec,
			port:     expPort,
			scrapeTO: timeout,
		}

		s, err := service.New(prg, svcConfig)
		if err != nil {
			log.Fatal(err)
		}

		if serviceAction != "" {
			err = service.Control(s, serviceAction)
			if err != nil {
				log.Fatalf("Failed to %s service: %v", serviceAction, err)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// Runs under the service manager, or interactively without --service.
		svcLogger, err := s.Logger(nil)
		if err != nil {
			log.Fatal(err)
		}
		if err = s.Run(); err != nil {
			svcLogger.Error(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exporterCmd)
	exporterCmd.Flags().StringVar(&expAccountID, "id", "", "Profile ID (default: the active profile)")
	exporterCmd.Flags().StringVar(&expPort, "port", "9100", "Port to listen on")
	exporterCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
