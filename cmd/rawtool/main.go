// rawtool is a CLI utility for inspecting and partitioning scene files.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Faultbox/rawscene/internal/config"
	"github.com/Faultbox/rawscene/internal/logger"
	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/raw"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "materials", "mat":
		cmdMaterials(args)
	case "stats":
		cmdStats(args)
	case "partition", "split":
		cmdPartition(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rawtool - scene conversion utility

Usage:
  rawtool <command> [options] <scene.yaml>

Commands:
  materials <scene.yaml>   Show resolved materials and their textures
  stats <scene.yaml>       Show model statistics after the geometry passes
  partition <scene.yaml>   Split the model into one model per material
  config [-o path]         Print the effective config, or save it to path

Options (all scene commands):
  -config <path>           Config file (.yaml or .toml)
  -debug                   Enable debug logging
  -compute-normals <mode>  never, broken, missing, always
  -short-indices           Keep every part addressable with 16-bit indices
  -force-discrete          Never merge surfaces that share a material
  -encoding <charset>      Charset of legacy names
  -texture-path <dir>      Texture search directory (repeatable)

Examples:
  rawtool materials scene.yaml
  rawtool partition -short-indices -texture-path ./textures scene.yaml
  rawtool config -o rawscene.toml`)
}

// setup parses the shared flags, loads the config and starts logging.
// It returns the flag set so the caller can read positional arguments.
func setup(name string, args []string) (*flag.FlagSet, *config.Config) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var flags config.Flags
	flags.Register(fs)
	fs.Parse(args)

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Console: os.Stderr,
		File: logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: 7,
			Compress:   true,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return fs, cfg
}

func requireScene(fs *flag.FlagSet, usage string) string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rawtool %s\n", usage)
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdMaterials(args []string) {
	fs, cfg := setup("materials", args)
	defer logger.Sync()
	path := requireScene(fs, "materials <scene.yaml>")

	p := newPipeline(cfg)
	model, err := p.load(path)
	if err != nil {
		fail(err)
	}

	printMaterials(os.Stdout, model)
	printDiagnostics(os.Stdout, p.diags)
}

func cmdStats(args []string) {
	fs, cfg := setup("stats", args)
	defer logger.Sync()
	path := requireScene(fs, "stats <scene.yaml>")

	p := newPipeline(cfg)
	model, err := p.convert(path)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Scene:      %s\n", path)
	printStats(os.Stdout, model)
	printDiagnostics(os.Stdout, p.diags)
}

func cmdPartition(args []string) {
	fs, cfg := setup("partition", args)
	defer logger.Sync()
	path := requireScene(fs, "partition <scene.yaml>")

	p := newPipeline(cfg)
	parts, err := p.partition(path)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Parts: %d\n\n", len(parts))
	for i, part := range parts {
		printPart(os.Stdout, i, part)
	}
	printDiagnostics(os.Stdout, p.diags)
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("o", "", "Save the config to this path instead of printing it")
	var flags config.Flags
	flags.Register(fs)
	fs.Parse(args)

	cfg, err := config.Load(&flags)
	if err != nil {
		fail(err)
	}

	if *output != "" {
		if err := cfg.SaveTo(*output); err != nil {
			fail(err)
		}
		fmt.Printf("Saved: %s\n", *output)
		return
	}

	fmt.Printf("Compute normals: %s\n", cfg.Convert.ComputeNormals)
	fmt.Printf("Short indices:   %v\n", cfg.Convert.ShortIndices)
	fmt.Printf("Force discrete:  %v\n", cfg.Convert.ForceDiscrete)
	fmt.Printf("Flip V:          %v\n", cfg.Convert.FlipV)
	fmt.Printf("Encoding:        %s\n", cfg.Names.Encoding)
	fmt.Printf("Texture paths:   %v\n", cfg.Textures.SearchPaths)
	fmt.Printf("Log level:       %s\n", cfg.Logging.Level)
	fmt.Printf("Config dir:      %s\n", config.ConfigDir())
}

func printMaterials(w io.Writer, m *raw.Model) {
	for i := 0; i < m.MaterialCount(); i++ {
		mat := m.Material(i)
		fmt.Fprintf(w, "%3d  %-24s %-8s double-sided=%v\n", i, mat.Name, mat.Info.ShadingModel(), mat.Info.DoubleSided())
		for usage, ix := range mat.Textures {
			if ix < 0 {
				continue
			}
			tex := m.Texture(ix)
			location := tex.FileLocation
			if location == "" {
				location = "(not found)"
			}
			fmt.Fprintf(w, "       %-12s %-24s %s\n", raw.TextureUsage(usage), tex.Name, location)
		}
	}
}

func printStats(w io.Writer, m *raw.Model) {
	fmt.Fprintf(w, "Vertices:   %d\n", m.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", m.TriangleCount())
	fmt.Fprintf(w, "Materials:  %d\n", m.MaterialCount())
	fmt.Fprintf(w, "Textures:   %d\n", m.TextureCount())
	fmt.Fprintf(w, "Surfaces:   %d\n", m.SurfaceCount())
	fmt.Fprintf(w, "Nodes:      %d\n", m.NodeCount())
	fmt.Fprintf(w, "Lights:     %d\n", m.LightCount())
	fmt.Fprintf(w, "Cameras:    %d\n", m.CameraCount())
	fmt.Fprintf(w, "Animations: %d\n", m.AnimationCount())
	fmt.Fprintf(w, "Attributes: %s\n", m.VertexAttributes())
}

func printPart(w io.Writer, i int, m *raw.Model) {
	name := "(empty)"
	if m.MaterialCount() > 0 {
		name = m.Material(0).Name
	}
	fmt.Fprintf(w, "Part %d: %s\n", i, name)
	fmt.Fprintf(w, "  vertices=%d triangles=%d surfaces=%d\n", m.VertexCount(), m.TriangleCount(), m.SurfaceCount())
	for s := 0; s < m.SurfaceCount(); s++ {
		surface := m.Surface(s)
		b := surface.Bounds
		fmt.Fprintf(w, "  surface %-16s discrete=%-5v min=(%.2f %.2f %.2f) max=(%.2f %.2f %.2f)\n",
			surface.Name, surface.Discrete, b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
}

func printDiagnostics(w io.Writer, c *diag.Collector) {
	warnings := c.Warnings()
	if len(warnings) == 0 {
		return
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Kind < warnings[j].Kind
	})
	fmt.Fprintf(w, "\nWarnings: %d\n", len(warnings))
	for _, d := range warnings {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
