package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/fitsview/internal/header"
)

var headerRecords bool

var headerCmd = &cobra.Command{
	Use:   "header <file>",
	Short: "Print the primary header of a FITS file",
	Long: `Prints the raw 80-column header text up to and including END.
With --records, prints one parsed keyword, value, comment line per card
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeader,
}

func init() {
	headerCmd.Flags().BoolVar(&headerRecords, "records", false, "print parsed records instead of raw text")
	rootCmd.AddCommand(headerCmd)
}

func runHeader(_ *cobra.Command, args []string) error {
	h, err := header.ParseFile(args[0])
	if err != nil {
		return err
	}
	logVerbose("%s: %d records, data at byte %d", args[0], h.Len(), h.DataOffset())

	if !headerRecords {
		fmt.Print(h.Raw())
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range h.Records() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Key, r.Value, r.Comment)
	}
	return tw.Flush()
}
