package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		metas, err := s.List(cmd.Context())
		if err != nil {
			return err
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(metas)
		}

		if len(metas) == 0 {
			fmt.Println("No datasets stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE ID\tNAME\tMESSAGES\tSENDERS\tIMPORTED")
		fmt.Fprintln(w, "───────\t────\t────────\t───────\t────────")
		for _, m := range metas {
			imported := time.UnixMilli(m.CreatedAtMs).Format("2006-01-02 15:04")
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				m.FileID, truncate(m.OriginalName, 40), m.MessageCount, len(m.Senders), imported)
		}
		w.Flush()
		fmt.Printf("\n%d datasets\n", len(metas))
		return nil
	},
}

// truncate shortens s to max runes, ellipsis-suffixed.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}
