package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/archive"
	"github.com/chatvault/chatvault/internal/extract"
)

var (
	importName      string
	importReplace   bool
	importAttachDir string
)

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import an exported chat HTML file",
	Long: `Import extracts message records from an exported chat HTML file and
stores the dataset. Re-importing with --replace and a matching display
name replaces the existing dataset instead of creating a duplicate.

Examples:
  chatvault import family-chat.html
  chatvault import family-chat.html --name "Family Chat" --replace
  chatvault import chat.html --attachments ./media`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > cfg.Server.MaxUploadBytes {
			return fmt.Errorf("%w: %s is %d bytes, cap is %d",
				archive.ErrOversizedInput, path, info.Size(), cfg.Server.MaxUploadBytes)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		messages := extract.Extract(string(raw))
		if len(messages) == 0 {
			return fmt.Errorf("%w: %s format not recognized, no message blocks found",
				archive.ErrExtractionEmpty, path)
		}

		name := importName
		if name == "" {
			name = filepath.Base(path)
		}

		var attachments map[string][]byte
		if importAttachDir != "" {
			attachments, err = loadAttachments(importAttachDir)
			if err != nil {
				return fmt.Errorf("load attachments: %w", err)
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var fileID string
		if importReplace {
			id, ok, err := s.ResolveFileID(cmd.Context(), name)
			if err != nil {
				return err
			}
			if ok {
				fileID = id
			}
		}

		meta, err := s.Put(cmd.Context(), fileID, name, raw, messages, attachments)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %s: %d messages, %d senders (fileId %s)\n",
			name, meta.MessageCount, len(meta.Senders), meta.FileID)
		if len(attachments) > 0 {
			fmt.Printf("Loaded %d attachments from %s\n", len(attachments), importAttachDir)
		}
		return nil
	},
}

// loadAttachments reads every regular file under dir, keyed by its
// slash-separated path relative to dir.
func loadAttachments(dir string) (map[string][]byte, error) {
	attachments := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		attachments[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importName, "name", "", "display name (default: file basename)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace an existing dataset with the same name")
	importCmd.Flags().StringVar(&importAttachDir, "attachments", "", "directory of media files referenced by the export")
}
