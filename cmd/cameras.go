package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bluecherry-cli/internal/app"
	"bluecherry-cli/internal/session"
	"bluecherry-cli/internal/stream"
	"bluecherry-cli/pkg/models"
)

// Variables to hold flag values
var (
	cameraID     string
	gridLayout   string
	gridSlot     int
	clearSlot    bool
	revealSecret bool
)

var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Browse cameras",
	Long:  `List the cameras of the active server, arrange them in a grid and get their live stream addresses.`,
}

// refreshDevices loads the device list into the session or exits.
func refreshDevices(ctx context.Context, a *app.App) []models.Device {
	devices, err := a.RefreshDevices(ctx)
	if errors.Is(err, session.ErrStale) {
		fmt.Println("The active server changed while loading devices; try again.")
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Error fetching devices: %v\n", err)
		os.Exit(1)
	}
	return devices
}

var camerasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List usable cameras",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		devices := refreshDevices(ctx, a)

		if printStructured(devices) {
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS")
		fmt.Fprintln(w, "--\t----\t------")
		for _, d := range devices {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.DisplayName, d.Status)
		}
		w.Flush()
	},
}

type gridView struct {
	Layout string         `json:"layout" yaml:"layout"`
	Slots  []gridSlotView `json:"slots" yaml:"slots"`
}

type gridSlotView struct {
	Slot     int    `json:"slot" yaml:"slot"`
	DeviceID string `json:"deviceId,omitempty" yaml:"deviceId,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}

func buildGridViews(grid models.DeviceGrid, devices []models.Device) []gridView {
	names := make(map[string]string, len(devices))
	for _, d := range devices {
		names[d.ID] = d.DisplayName
	}

	var views []gridView
	for _, l := range []models.Layout{models.LayoutSingle, models.LayoutTwin, models.LayoutQuad} {
		v := gridView{Layout: l.String()}
		for i := 0; i < l.Slots(); i++ {
			id, _ := grid.Slot(l, i)
			v.Slots = append(v.Slots, gridSlotView{Slot: i, DeviceID: id, Name: names[id]})
		}
		views = append(views, v)
	}
	return views
}

func printGrid(grid models.DeviceGrid, devices []models.Device) {
	views := buildGridViews(grid, devices)
	if printStructured(views) {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "LAYOUT\tSLOT\tDEVICE\tNAME")
	fmt.Fprintln(w, "------\t----\t------\t----")
	for _, v := range views {
		for _, s := range v.Slots {
			id := s.DeviceID
			if id == "" {
				id = "-"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", v.Layout, s.Slot, id, s.Name)
		}
	}
	w.Flush()
}

var camerasGridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Show the saved camera grid",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		devices := refreshDevices(ctx, a)
		printGrid(a.Session.Snapshot().SelectedDeviceList, devices)
	},
}

var camerasSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Put a camera into a grid slot",
	Example: `  bluecherry-cli cameras select --layout 4 --slot 2 --id 7
  bluecherry-cli cameras select --layout 2 --slot 0 --clear`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		layout, err := models.ParseLayout(gridLayout)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		id := strings.TrimSpace(cameraID)
		if clearSlot {
			id = ""
		} else if id == "" {
			log.Fatal("Error: --id is required unless --clear is given.")
		}

		devices := refreshDevices(ctx, a)
		grid, err := a.SelectCamera(ctx, layout, gridSlot, id)
		if err != nil {
			log.Fatalf("Error selecting camera: %v", err)
		}
		printGrid(grid, devices)
	},
}

var camerasStreamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Print the live RTSP address of a camera",
	Example: `  bluecherry-cli cameras stream --id 7
  ffplay "$(bluecherry-cli cameras stream --id 7 --reveal)"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		acc, _ := a.Active()
		uri, err := stream.LiveURI(acc, cameraID)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		if !revealSecret {
			uri = stream.Redact(uri)
		}
		fmt.Println(uri)
	},
}

func init() {
	rootCmd.AddCommand(camerasCmd)

	camerasCmd.AddCommand(camerasListCmd)
	camerasCmd.AddCommand(camerasGridCmd)
	camerasCmd.AddCommand(camerasSelectCmd)
	camerasCmd.AddCommand(camerasStreamCmd)

	camerasSelectCmd.Flags().StringVar(&gridLayout, "layout", "1", "Grid layout: 1, 2 or 4")
	camerasSelectCmd.Flags().IntVar(&gridSlot, "slot", 0, "Slot index within the layout")
	camerasSelectCmd.Flags().StringVar(&cameraID, "id", "", "Device ID")
	camerasSelectCmd.Flags().BoolVar(&clearSlot, "clear", false, "Clear the slot")

	camerasStreamCmd.Flags().StringVar(&cameraID, "id", "", "Device ID")
	camerasStreamCmd.Flags().BoolVar(&revealSecret, "reveal", false, "Include the password in the address")
	_ = camerasStreamCmd.MarkFlagRequired("id")
}
