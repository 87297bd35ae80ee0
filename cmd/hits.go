package cmd

import (
	"github.com/Honglongwu/picobio/internal/asmcmp"
	"github.com/spf13/cobra"
)

// hitsCmd is for listing each fragment's hits on the reference without drawing them.
var hitsCmd = &cobra.Command{
	Use:                        "hits <assembly> <reference>",
	Short:                      "Print a table of each fragment's hits on the reference",
	Args:                       cobra.ExactArgs(2),
	RunE:                       asmcmp.HitsCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  asmcmp hits contigs.fasta NC_000913.fasta --min-hit 500",
	Long: `BLAST the assembly against the reference, as when drawing, and write a
table to stdout with a row per fragment: its length, number of hits, bases of
the reference covered, mean identity and strand. Fragments without a hit are
listed with zero hits.`,
	Aliases: []string{"table"},
}

func init() {
	rootCmd.AddCommand(hitsCmd)
}
