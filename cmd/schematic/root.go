package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/producer"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/config"
)

var (
	bad    = color.New(color.FgRed, color.Bold)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	subtle = color.New(color.FgHiBlack)
)

type rootOpts struct {
	configPath string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:   "schematic",
		Short: "Inspect and generate wiring schematics",
		Long: `Work with schematic graphs stored as JSON or HCL.

Examples:
  schematic diag circuit.hcl              # Run diagnostics
  schematic bom circuit.json -o bom.csv   # Export the bill of materials
  schematic trace circuit.hcl bat         # Components reachable from bat
  schematic generate "12V fan with fuse"  # Ask the configured producer
  schematic watch                         # Follow live session changes`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newDiagCmd(),
		newBOMCmd(),
		newTraceCmd(),
		newGenerateCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

func (o *rootOpts) load() (*config.Config, error) {
	return config.Load(o.configPath, o.envFile)
}

func (o *rootOpts) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readGraph loads a .json or .hcl circuit file.
func readGraph(path string) (schematic.Graph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return schematic.Graph{}, err
		}
		defer f.Close()
		return schematic.Decode(f)
	case ".hcl":
		src, err := os.ReadFile(path)
		if err != nil {
			return schematic.Graph{}, err
		}
		return producer.DecodeHCL(path, src)
	}
	return schematic.Graph{}, fmt.Errorf("unsupported file type %q (want .json or .hcl)", filepath.Ext(path))
}
