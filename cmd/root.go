package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bluecherry-cli/internal/config"
	"bluecherry-cli/internal/logger"
)

var cfgFile string
var jsonOutput bool
var yamlOutput bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bluecherry-cli",
	Short: "A CLI client for Bluecherry video surveillance servers",
	Long: `Manage Bluecherry server profiles, browse cameras and events, and
route push notifications to the right server and camera.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bluecherry-cli.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Output results as YAML")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func initConfig() {
	config.InitConfig(cfgFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Printf("Error: invalid log configuration: %v\n", err)
		os.Exit(1)
	}
}

// printStructured writes v as JSON or YAML when requested and reports
// whether it did.
func printStructured(v interface{}) bool {
	switch {
	case jsonOutput:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Printf("Error encoding JSON: %v\n", err)
			os.Exit(1)
		}
		return true
	case yamlOutput:
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			fmt.Printf("Error encoding YAML: %v\n", err)
			os.Exit(1)
		}
		_ = enc.Close()
		return true
	}
	return false
}
