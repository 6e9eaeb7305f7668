package cmd

import (
	"context"
	"fmt"
	"os"

	"bluecherry-cli/internal/app"
	"bluecherry-cli/internal/client"
	"bluecherry-cli/internal/config"
	"bluecherry-cli/internal/logger"
	"bluecherry-cli/internal/router"
	"bluecherry-cli/internal/store"
	"bluecherry-cli/internal/toast"
)

// openApp builds the application from the loaded configuration and resumes
// the active profile. Toasts go to stderr so stdout stays machine readable.
func openApp(ctx context.Context, nav router.Navigator) (*app.App, config.Config) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	kv, err := store.Open(cfg.Store)
	if err != nil {
		fmt.Printf("Error opening account store: %v\n", err)
		os.Exit(1)
	}

	a := app.New(app.Options{
		KV: kv,
		Client: client.ClientConfig{
			InsecureTLS: cfg.Client.InsecureTLS,
			Timeout:     cfg.Client.Timeout,
		},
		Toasts:    toast.NewTerminal(os.Stderr),
		Navigator: nav,
		Router: router.Config{
			DedupWindow: cfg.Push.DedupWindow,
		},
		Logger: logger.GetLogger(),
	})

	if err := a.Bootstrap(ctx); err != nil {
		fmt.Printf("Error loading accounts: %v\n", err)
		os.Exit(1)
	}
	return a, cfg
}

// requireLogin exits unless a profile is active.
func requireLogin(a *app.App) {
	if !a.Session.Snapshot().LoggedIn() {
		fmt.Println("Error: Not logged in. Please run 'bluecherry-cli login' first.")
		os.Exit(1)
	}
}
