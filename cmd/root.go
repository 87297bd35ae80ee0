// Package cmd is for command line interactions with the asmcmp application
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Honglongwu/picobio/config"
	"github.com/Honglongwu/picobio/internal/asmcmp"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// profiler is the running profile, if --profile was set.
var profiler interface{ Stop() }

// rootCmd compares an assembly against a reference when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "asmcmp <assembly> <reference>",
	Short: "Draw a draft genome assembly against a reference genome",
	Long: `Compare a draft (possibly fragmented) genome assembly with a reference genome.

The assembly's contigs are BLASTed against the reference and every hit is drawn
on a circular or linear track of the reference, one color per contig. A BLAST
database must already exist at the reference's path:

  makeblastdb -dbtype nucl -in reference.fasta

blastn's output is kept next to the assembly (<assembly>.blast.tsv) and reused
by later runs. The figure is written to <assembly>.blast.<format> unless --out
is set. If the reference has a sibling GenBank or GFF file (reference.gbk,
reference.gff3) its genes are drawn too.`,
	Example: `  asmcmp contigs.fasta NC_000913.fasta
  asmcmp contigs.fasta NC_000913.fasta --layout linear --format pdf -o figure.pdf`,
	Args:                       cobra.ExactArgs(2),
	RunE:                       asmcmp.CompareCmd,
	SuggestionsMinimumDistance: 2,
	Version:                    "0.1.0",
	SilenceErrors:              true,
	SilenceUsage:               true,
	PersistentPreRunE:          setup,
	PersistentPostRun:          teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

// set flags
func init() {
	rootCmd.Flags().StringP("out", "o", "", "output image file (default <assembly>.blast.<format>)")
	rootCmd.Flags().StringP("format", "f", "svg", "image format: svg, pdf or png")
	mustBind("render.format", rootCmd.Flags().Lookup("format"))

	// shared by every command that runs blastn
	flags := rootCmd.PersistentFlags()
	flags.StringP("settings", "s", "", "settings file (YAML, JSON or TOML)")
	flags.StringP("layout", "l", "circular", "reference track: circular or linear")
	flags.Float64("evalue", 1e-5, "expect value cut off passed to blastn")
	flags.Duration("timeout", 0, "maximum time to wait on blastn, eg: 10m (0 waits forever)")
	flags.Bool("strict", false, "abort on a malformed blastn row rather than skipping it")
	flags.Int("min-hit", 0, "drop hits shorter than this on the fragment")
	flags.BoolP("verbose", "v", false, "log every skipped row and discarded hit")
	flags.String("profile", "", "write a cpu or mem profile to the working directory")
	flags.MarkHidden("profile")

	mustBind("layout.mode", flags.Lookup("layout"))
	mustBind("blast.evalue", flags.Lookup("evalue"))
	mustBind("blast.timeout", flags.Lookup("timeout"))
	mustBind("blast.strict", flags.Lookup("strict"))
	mustBind("layout.min-hit", flags.Lookup("min-hit"))
	mustBind("verbose", flags.Lookup("verbose"))
}

// setup reads settings and starts a profile before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	settings, _ := cmd.Flags().GetString("settings")
	if err := config.Init(viper.GetViper(), settings); err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("profile")
	switch strings.ToLower(mode) {
	case "":
	case "cpu":
		profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."))
	default:
		return fmt.Errorf("unknown profile %q: expected cpu or mem", mode)
	}

	return nil
}

// teardown writes the profile, if one was started.
func teardown(cmd *cobra.Command, args []string) {
	if profiler != nil {
		profiler.Stop()
		profiler = nil
	}
}

// mustBind binds a flag to a viper setting.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
