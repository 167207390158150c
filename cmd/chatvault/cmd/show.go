package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/archive"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <fileId>",
	Short: "Show dataset metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ds, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		meta := archive.ComputeMeta(ds.FileID, ds.OriginalName, ds.CreatedAtMs, ds.Messages)

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		}

		fmt.Printf("File ID:     %s\n", meta.FileID)
		fmt.Printf("Name:        %s\n", meta.OriginalName)
		fmt.Printf("Messages:    %d\n", meta.MessageCount)
		fmt.Printf("Senders:     %s\n", strings.Join(meta.Senders, ", "))
		fmt.Printf("Imported:    %s\n", time.UnixMilli(meta.CreatedAtMs).Format(time.RFC3339))
		if meta.MinTimestampMs != nil && meta.MaxTimestampMs != nil {
			fmt.Printf("Time range:  %s to %s\n",
				time.UnixMilli(*meta.MinTimestampMs).Format("2006-01-02 15:04"),
				time.UnixMilli(*meta.MaxTimestampMs).Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("Time range:  (no parsed timestamps)\n")
		}
		if len(ds.Attachments) > 0 {
			fmt.Printf("Attachments: %d\n", len(ds.Attachments))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}
