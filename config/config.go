// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings,
// eg: ASMCMP_BLAST_EVALUE=1e-10
const EnvPrefix = "asmcmp"

// BlastConfig is settings for running blastn.
type BlastConfig struct {
	// path or name of the blastn executable
	Blastn string `mapstructure:"blastn"`

	// value passed to blastn's -task flag
	Task string `mapstructure:"task"`

	// expect value cut off for hits
	EValue float64 `mapstructure:"evalue"`

	// number of threads for blastn. < 1 means NumCPU - 1
	Threads int `mapstructure:"threads"`

	// maximum time to wait on blastn. 0 waits forever
	Timeout time.Duration `mapstructure:"timeout"`

	// reuse an existing tabular output file next to the assembly
	Reuse bool `mapstructure:"reuse"`

	// abort on the first malformed row rather than skipping it
	Strict bool `mapstructure:"strict"`
}

// LayoutConfig is settings for placing fragments on the reference.
type LayoutConfig struct {
	// "circular" or "linear"
	Mode string `mapstructure:"mode"`

	// hits with a query span shorter than this are dropped
	MinHit int `mapstructure:"min-hit"`

	// runs of N at least this long are drawn as gaps in a fragment
	MinGap int `mapstructure:"min-gap"`

	// number of colors in the fragment palette
	Palette int `mapstructure:"palette"`

	// drop hits nested inside a longer hit of the same fragment
	DropNested bool `mapstructure:"drop-nested"`

	// bases between contigs laid end to end by the multi command
	Spacer int `mapstructure:"spacer"`
}

// RenderConfig is settings for the output figure.
type RenderConfig struct {
	// "svg", "pdf" or "png"
	Format string `mapstructure:"format"`

	// width of the figure in points
	Width float64 `mapstructure:"width"`

	// height of the figure in points. 0 lets the layout decide
	Height float64 `mapstructure:"height"`
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file, the environment,
// and those available from the command line
type Config struct {
	// Blast settings
	Blast BlastConfig `mapstructure:"blast"`

	// Layout settings
	Layout LayoutConfig `mapstructure:"layout"`

	// Render settings
	Render RenderConfig `mapstructure:"render"`

	// Verbose logs every skipped row and discarded hit
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults registers the default value of every setting with v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("blast.blastn", "blastn")
	v.SetDefault("blast.task", "blastn")
	v.SetDefault("blast.evalue", 1e-5)
	v.SetDefault("blast.threads", 0)
	v.SetDefault("blast.timeout", time.Duration(0))
	v.SetDefault("blast.reuse", true)
	v.SetDefault("blast.strict", false)

	v.SetDefault("layout.mode", "circular")
	v.SetDefault("layout.min-hit", 0)
	v.SetDefault("layout.min-gap", 1000)
	v.SetDefault("layout.palette", 12)
	v.SetDefault("layout.drop-nested", false)
	v.SetDefault("layout.spacer", 10000)

	v.SetDefault("render.format", "svg")
	v.SetDefault("render.width", 800.0)
	v.SetDefault("render.height", 0.0)

	v.SetDefault("verbose", false)
}

// Init prepares v: defaults, environment overrides, and an optional
// settings file (YAML, JSON, TOML) that overrides the defaults.
func Init(v *viper.Viper, settingsFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if settingsFile == "" {
		return nil
	}

	v.SetConfigFile(settingsFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", settingsFile, err)
	}

	return nil
}

// New returns a new Config struct populated by Viper settings
// (either from a settings file, the environment and/or command line arguments)
func New(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	return c, c.validate()
}

// BlastThreads returns the number of threads to pass to blastn.
func (c *Config) BlastThreads() int {
	if c.Blast.Threads > 0 {
		return c.Blast.Threads
	}

	threads := runtime.NumCPU() - 1
	if threads < 1 {
		threads = 1
	}
	return threads
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Layout.Mode) {
	case "circular", "linear":
	default:
		return fmt.Errorf("unknown layout %q: expected circular or linear", c.Layout.Mode)
	}

	switch strings.ToLower(c.Render.Format) {
	case "svg", "pdf", "png":
	default:
		return fmt.Errorf("unknown format %q: expected svg, pdf or png", c.Render.Format)
	}

	if c.Blast.EValue <= 0 {
		return fmt.Errorf("evalue must be positive, got %g", c.Blast.EValue)
	}
	if c.Blast.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Blast.Timeout)
	}
	if c.Layout.Spacer < 0 {
		return fmt.Errorf("spacer must not be negative, got %d", c.Layout.Spacer)
	}
	if c.Layout.Palette < 1 {
		return fmt.Errorf("palette needs at least one color, got %d", c.Layout.Palette)
	}
	if c.Render.Width <= 0 {
		return fmt.Errorf("width must be positive, got %g", c.Render.Width)
	}

	return nil
}
