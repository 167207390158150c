package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <fileId>",
	Short: "Write a dataset's original markup",
	Long: `Export writes the raw markup a dataset was extracted from, to stdout
or to the file given with --output. The stored markup is byte-identical
to the imported file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		raw, err := s.GetRaw(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if exportOutput == "" {
			_, err := os.Stdout.Write(raw)
			return err
		}
		if err := os.WriteFile(exportOutput, raw, 0644); err != nil {
			return fmt.Errorf("write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(raw), exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
}
