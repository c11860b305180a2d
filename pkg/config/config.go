// Package config loads and validates the YAML configuration shared by the
// partition and alignment analyses.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/phylogeno/subgenome/pkg/alignment"
	"github.com/phylogeno/subgenome/pkg/errors"
	"github.com/phylogeno/subgenome/pkg/search"
)

// Config is the root configuration document.
type Config struct {
	Search    search.Config   `yaml:"search"`
	Alignment AlignmentConfig `yaml:"alignment"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// AlignmentConfig configures the label alignment analysis.
type AlignmentConfig struct {
	// LogBase selects the entropy unit, "natural" or "binary".
	LogBase string `yaml:"log_base" validate:"oneof=natural binary"`
}

// Base maps the configured name onto the alignment package's constant.
func (c AlignmentConfig) Base() alignment.LogBase {
	if c.LogBase == "binary" {
		return alignment.Binary
	}
	return alignment.Natural
}

// ReconcileConfig configures the external reconciliation tool.
type ReconcileConfig struct {
	// JarPath locates the tool jar. Required for partition analyses.
	JarPath string `yaml:"jar_path"`
	// JavaPath overrides the java binary, default "java".
	JavaPath string `yaml:"java_path"`
	// JavaOptions replaces the default JVM flags.
	JavaOptions []string `yaml:"java_options"`
	// Command overrides the inference command, default Infer_ST_MDC.
	Command string `yaml:"command"`
	// WorkDir holds the transient job files.
	WorkDir string `yaml:"work_dir"`
	// KeepFiles leaves job files on disk for debugging.
	KeepFiles bool `yaml:"keep_files"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Search:    search.DefaultConfig(),
		Alignment: AlignmentConfig{LogBase: "natural"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidConfig, "reading config file"),
			errors.Fields{"path": path},
		)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidConfig, "parsing config file"),
			errors.Fields{"path": path},
		)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the document, including the embedded search settings.
func (c Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidConfig, "invalid configuration")
	}
	return nil
}
