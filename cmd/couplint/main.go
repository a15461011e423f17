package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/couplint/couplint/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:     "couplint",
		Usage:    "Connascence and coupling analysis for source code",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Couplint walks each source file once and reports coupling violations:
magic literals, long parameter lists, god objects, shared global state,
duplicate algorithms, and safety-rule breaches modeled on aerospace
coding standards.

Supports: Go, Python`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"COUPLINT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, sarif",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel file workers (0 = 2x CPU count)",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable profiling and write <prefix>.cpu.pprof and <prefix>.mem.pprof",
			},
		},
		Before: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC() // up-to-date heap statistics
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			safetyCmd(),
			duplicatesCmd(),
			initCmd(),
			mcpCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig resolves configuration for a command: explicit --config is
// fatal when broken, otherwise standard locations apply. Global flags win
// over file values.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
