package asmcmp

import (
	"context"
	"time"

	"github.com/Honglongwu/picobio/config"
	"github.com/Honglongwu/picobio/internal/blast"
	"github.com/Honglongwu/picobio/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CompareCmd draws the assembly's fragments on the reference.
// args are the assembly and reference FASTA paths.
func CompareCmd(cmd *cobra.Command, args []string) error {
	conf, err := config.New(viper.GetViper())
	if err != nil {
		return err
	}

	in := Input{Assembly: args[0], Reference: args[1]}
	in.Out, _ = cmd.Flags().GetString("out")

	painter := &render.Painter{
		Format: conf.Render.Format,
		Width:  conf.Render.Width,
		Height: conf.Render.Height,
		Colors: conf.Layout.Palette,
	}

	report, err := Run(commandContext(cmd), conf, newRunner(conf), painter, in)
	if err != nil {
		return err
	}
	report.Log(conf.Verbose)

	stderr.Printf(
		"placed %d of %d fragments, wrote %s (%s)",
		len(report.Diagram.Fragments()), len(report.Fragments), report.Out, report.Execution.Round(time.Millisecond),
	)
	return nil
}

// HitsCmd BLASTs the assembly against the reference and prints a table of
// each fragment's hits without drawing them.
func HitsCmd(cmd *cobra.Command, args []string) error {
	conf, err := config.New(viper.GetViper())
	if err != nil {
		return err
	}

	report, err := Run(commandContext(cmd), conf, newRunner(conf), nil, Input{Assembly: args[0], Reference: args[1]})
	if err != nil {
		return err
	}
	report.Log(conf.Verbose)

	return Summary(cmd.OutOrStdout(), report)
}

// newRunner returns a blastn Runner configured from conf.
func newRunner(conf *config.Config) *blast.Runner {
	return &blast.Runner{
		Blastn:  conf.Blast.Blastn,
		Task:    conf.Blast.Task,
		EValue:  conf.Blast.EValue,
		Threads: conf.BlastThreads(),
		Timeout: conf.Blast.Timeout,
		Reuse:   conf.Blast.Reuse,
		Strict:  conf.Blast.Strict,
	}
}

// MultiCmd BLASTs each assembly against the one before it and draws them
// as stacked tracks. args are two or more assembly FASTA paths.
func MultiCmd(cmd *cobra.Command, args []string) error {
	conf, err := config.New(viper.GetViper())
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		conf.Render.Format = f.Value.String()
	}

	painter := &render.Painter{
		Format: conf.Render.Format,
		Width:  conf.Render.Width,
		Height: conf.Render.Height,
		Colors: conf.Layout.Palette,
	}

	report, err := RunMulti(commandContext(cmd), conf, newRunner(conf), painter, args, out)
	if err != nil {
		return err
	}
	report.Log(conf.Verbose)

	stderr.Printf(
		"linked %d assemblies with %d hits, wrote %s (%s)",
		len(report.Assemblies), len(report.Stack.Links), report.Out, report.Execution.Round(time.Millisecond),
	)
	return nil
}

// commandContext is the command's context, cancelled on an interrupt when
// the command was executed with one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
