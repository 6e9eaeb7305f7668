package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bluecherry-cli/internal/client"
	"bluecherry-cli/internal/stream"
	"bluecherry-cli/internal/timefmt"
)

var (
	eventLimit  int
	eventID     string
	eventOutput string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Browse recorded events",
	Long:  `List the event feed of the active server and download event recordings.`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent events",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		feed, err := a.Events(ctx, eventLimit)
		if err != nil {
			fmt.Printf("Error fetching events: %v\n", err)
			os.Exit(1)
		}

		if printStructured(feed) {
			return
		}

		if len(feed.Events) == 0 {
			fmt.Println("No events found.")
			return
		}

		acc, _ := a.Active()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTIMESTAMP\tTYPE\tTITLE\tMEDIA")
		fmt.Fprintln(w, "--\t---------\t----\t-----\t-----")

		for _, e := range feed.Events {
			ts := ""
			if !e.Published.IsZero() {
				ts = timefmt.Format(e.Published.Local(), acc.DateFormat)
			}
			media := "-"
			if e.HasMedia() {
				media = e.MediaID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, ts, e.Category, e.Title, media)
		}
		w.Flush()
	},
}

var eventsDownloadCmd = &cobra.Command{
	Use:     "download",
	Short:   "Download the recording of an event",
	Example: `  bluecherry-cli events download --id 1234 --output clip.mkv`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		output := eventOutput
		if output == "" {
			output = fmt.Sprintf("event-%s.mkv", eventID)
		}

		fmt.Printf("Downloading media %s ...\n", eventID)
		n, err := a.DownloadRecording(ctx, eventID, output)
		if err != nil {
			fmt.Printf("Error downloading recording: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved %d bytes to %s\n", n, output)
	},
}

var eventsURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the playback address of an event recording",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a, _ := openApp(ctx, nil)
		defer a.Close()
		requireLogin(a)

		acc, _ := a.Active()
		uri, err := stream.RecordingURI(acc, eventID)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		fmt.Println(uri)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsDownloadCmd)
	eventsCmd.AddCommand(eventsURLCmd)

	eventsListCmd.Flags().IntVar(&eventLimit, "limit", client.DefaultEventLimit, "Maximum number of events")

	eventsDownloadCmd.Flags().StringVar(&eventID, "id", "", "Media ID of the event")
	eventsDownloadCmd.Flags().StringVarP(&eventOutput, "output", "o", "", "Output filename (default event-<id>.mkv)")
	_ = eventsDownloadCmd.MarkFlagRequired("id")

	eventsURLCmd.Flags().StringVar(&eventID, "id", "", "Media ID of the event")
	_ = eventsURLCmd.MarkFlagRequired("id")
}
