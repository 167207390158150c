package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/archive"
	"github.com/chatvault/chatvault/internal/search"
	"github.com/chatvault/chatvault/internal/store"
)

var (
	searchAll     bool
	searchExclude string
	searchMode    string
	searchSender  string
	searchFrom    string
	searchTo      string
	searchOffset  int
	searchLimit   int
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <fileId> [terms...]",
	Short: "Search messages in one dataset or across all",
	Long: `Search runs a filtered, ranked query over stored messages. With --all
the first argument is a search term and every dataset is searched,
with results merged into one ranked list.

Examples:
  chatvault search 3f2a lake house
  chatvault search 3f2a lake --mode word --sender Ava
  chatvault search --all "lake" --from 2023-01-01 --to 2023-12-31
  chatvault search 3f2a lake --exclude "boat" --limit 10 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fileID string
		terms := args
		if !searchAll {
			fileID = args[0]
			terms = args[1:]
		}

		mode, err := search.ParseMatchMode(searchMode)
		if err != nil {
			return err
		}

		q := search.Query{
			Text:    strings.Join(terms, " "),
			Exclude: searchExclude,
			Mode:    mode,
			Sender:  searchSender,
			Offset:  searchOffset,
			Limit:   searchLimit,
		}
		if q.FromMs, err = parseTimeFlag(searchFrom, false); err != nil {
			return err
		}
		if q.ToMs, err = parseTimeFlag(searchTo, true); err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var res search.Result
		if searchAll {
			res, err = runMergeSearch(cmd, s, q)
		} else {
			var ds *archive.Dataset
			ds, err = s.Get(cmd.Context(), fileID)
			if err != nil {
				return err
			}
			res, err = search.Run(ds.Messages, q)
		}
		if err != nil {
			return err
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		if res.Total == 0 {
			fmt.Println("No messages found.")
			return nil
		}
		return outputHitsTable(res, searchAll)
	},
}

func runMergeSearch(cmd *cobra.Command, s *store.Store, q search.Query) (search.Result, error) {
	metas, err := s.List(cmd.Context())
	if err != nil {
		return search.Result{}, err
	}
	datasets := make([]search.DatasetMessages, 0, len(metas))
	for _, m := range metas {
		ds, err := s.Get(cmd.Context(), m.FileID)
		if err != nil {
			return search.Result{}, err
		}
		datasets = append(datasets, search.DatasetMessages{
			FileID:   ds.FileID,
			FileName: ds.OriginalName,
			Messages: ds.Messages,
		})
	}
	return search.RunAll(cmd.Context(), datasets, q)
}

func outputHitsTable(res search.Result, withDataset bool) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if withDataset {
		fmt.Fprintln(w, "DATE\tSENDER\tDATASET\tSNIPPET")
		fmt.Fprintln(w, "────\t──────\t───────\t───────")
	} else {
		fmt.Fprintln(w, "DATE\tSENDER\tSNIPPET")
		fmt.Fprintln(w, "────\t──────\t───────")
	}
	for _, h := range res.Hits {
		date := "-"
		if h.TimestampMs != nil {
			date = time.UnixMilli(*h.TimestampMs).Format("2006-01-02 15:04")
		}
		if withDataset {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", date, truncate(h.Sender, 24), truncate(h.FileName, 24), h.Snippet)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", date, truncate(h.Sender, 24), h.Snippet)
		}
	}
	w.Flush()
	fmt.Printf("\nShowing %d of %d matches\n", len(res.Hits), res.Total)
	return nil
}

// parseTimeFlag parses --from/--to values as RFC3339 or YYYY-MM-DD local
// dates. A bare --to date means end of that day, inclusive.
func parseTimeFlag(v string, endOfDay bool) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		ms := t.UnixMilli()
		return &ms, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: time %q is neither RFC3339 nor YYYY-MM-DD", archive.ErrInvalidQuery, v)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	ms := t.UnixMilli()
	return &ms, nil
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "Search across every stored dataset")
	searchCmd.Flags().StringVar(&searchExclude, "exclude", "", "Terms that disqualify a message")
	searchCmd.Flags().StringVar(&searchMode, "mode", "substring", "Match mode: substring or word")
	searchCmd.Flags().StringVar(&searchSender, "sender", "", "Exact sender name filter")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "Earliest timestamp (RFC3339 or YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "Latest timestamp (RFC3339 or YYYY-MM-DD)")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Skip first N results")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}
