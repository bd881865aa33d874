package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config         string
	Debug          bool
	ComputeNormals string
	ShortIndices   bool
	ForceDiscrete  bool
	Encoding       string
	TexturePaths   stringList
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.ComputeNormals, "compute-normals", "", "When to compute normals: never, broken, missing, always")
	fs.BoolVar(&f.ShortIndices, "short-indices", false, "Split models so 16-bit indices suffice")
	fs.BoolVar(&f.ForceDiscrete, "force-discrete", false, "Never merge surfaces that share a material")
	fs.StringVar(&f.Encoding, "encoding", "", "Charset of legacy names: euc-kr, shift-jis, gbk, windows-1252")
	fs.Var(&f.TexturePaths, "texture-path", "Directory to search for textures (repeatable)")
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.ComputeNormals != "" {
		cfg.Convert.ComputeNormals = f.ComputeNormals
	}
	if f.ShortIndices {
		cfg.Convert.ShortIndices = true
	}
	if f.ForceDiscrete {
		cfg.Convert.ForceDiscrete = true
	}
	if f.Encoding != "" {
		cfg.Names.Encoding = f.Encoding
	}
	cfg.Textures.SearchPaths = append(cfg.Textures.SearchPaths, f.TexturePaths...)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
