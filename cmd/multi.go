package cmd

import (
	"github.com/Honglongwu/picobio/internal/asmcmp"
	"github.com/spf13/cobra"
)

// multiCmd is for drawing several assemblies, each linked to the one before it.
var multiCmd = &cobra.Command{
	Use:                        "multi <assembly> <assembly> [assembly...]",
	Short:                      "Draw a chain of assemblies, each against the one before it",
	Args:                       cobra.MinimumNArgs(2),
	RunE:                       asmcmp.MultiCmd,
	SuggestionsMinimumDistance: 2,
	Example:                    "  asmcmp multi reference.fasta assembly1.fasta assembly2.fasta -o figure.pdf -f pdf",
	Long: `BLAST every assembly against the one before it and draw them top to bottom,
each as a track of its contigs laid end to end (layout.spacer bases apart). Hits
link a track to the track above it: red on the plus strand, blue and twisted on
the minus strand, fading as identity drops.

Every assembly but the last needs a BLAST database at its path:

  makeblastdb -dbtype nucl -in assembly1.fasta

blastn's output is kept as <assembly2>_vs_<assembly1>.blast.tsv and reused by
later runs. The figure is written to <assembly1>.multi.<format> unless --out is set.`,
}

func init() {
	multiCmd.Flags().StringP("out", "o", "", "output image file (default <first assembly>.multi.<format>)")
	multiCmd.Flags().StringP("format", "f", "svg", "image format: svg, pdf or png")

	rootCmd.AddCommand(multiCmd)
}
