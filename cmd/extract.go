package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/address-mapper/internal/extract"
	"github.com/sells-group/address-mapper/internal/platform/local"
)

var extractPOBoxes bool

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the candidate addresses found in a PDF or text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("po-boxes") {
			cfg.Pipeline.POBoxes = extractPOBoxes
		}
		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		opts := extract.Options{POBoxes: cfg.Pipeline.POBoxes}
		return printCandidates(cmd.OutOrStdout(), local.TabulaReader{}, args[0], opts)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractPOBoxes, "po-boxes", true, "include post-office boxes")
	rootCmd.AddCommand(extractCmd)
}

// printCandidates writes one "page<TAB>address" line per candidate. Plain
// text files are treated as a single page.
func printCandidates(w io.Writer, reader local.PDFReader, path string, opts extract.Options) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrapf(err, "read %s", path)
		}
		return writeCandidates(w, 1, extract.Candidates(string(data), opts))
	}

	n, err := reader.PageCount(path)
	if err != nil {
		return err
	}
	for page := 1; page <= n; page++ {
		text, err := reader.PageText(path, page)
		if err != nil {
			return err
		}
		if err := writeCandidates(w, page, extract.Candidates(text, opts)); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(w io.Writer, page int, cands []string) error {
	for _, c := range cands {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", page, c); err != nil {
			return eris.Wrap(err, "write candidate")
		}
	}
	return nil
}
