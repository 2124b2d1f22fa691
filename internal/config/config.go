package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"festive-study/internal/model"
	"festive-study/internal/scenario"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load assumptions from a separate YAML preset. Fields present
	// in Assumptions override the preset, which overrides the defaults.
	AssumptionsFile string    `yaml:"assumptions_file"`
	Assumptions     yaml.Node `yaml:"assumptions"`

	Scenario       string   `yaml:"scenario"`
	DiscountRate   float64  `yaml:"discount_rate"`
	DataDir        string   `yaml:"data_dir"`
	ReportsDir     string   `yaml:"reports_dir"`
	ReportTemplate string   `yaml:"report_template"`
	Business       Business `yaml:"business"`

	resolved model.Assumptions
}

type Business struct {
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location" json:"location"`
}

const (
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
)

func Default() *Config {
	return &Config{
		Scenario:     scenario.Base().Name(),
		DiscountRate: 0.10,
		DataDir:      DefaultDataDir,
		ReportsDir:   DefaultReportsDir,
		Business: Business{
			Name:     "Location Festive Niort",
			Location: "Niort, France",
		},
		resolved: model.DefaultAssumptions(),
	}
}

// ResolvedAssumptions is the defaults with the preset file and inline
// overrides applied.
func (c *Config) ResolvedAssumptions() model.Assumptions { return c.resolved }

// Load reads, merges and validates a config. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if c.AssumptionsFile != "" {
		presetPath := ResolvePath(base, c.AssumptionsFile)
		preset, err := LoadAssumptionsFile(presetPath, c.resolved)
		if err != nil {
			return nil, err
		}
		c.resolved = preset
	}
	if !isEmptyNode(&c.Assumptions) {
		doc, err := yaml.Marshal(&c.Assumptions)
		if err != nil {
			return nil, err
		}
		c.resolved, err = overlayYAML(c.resolved, doc)
		if err != nil {
			return nil, fmt.Errorf("%s: assumptions: %w", path, err)
		}
	}
	if c.ReportTemplate != "" {
		c.ReportTemplate = ResolvePath(base, c.ReportTemplate)
	}
	return c, nil
}

// ResolvePath interprets rel relative to dir when that file exists, and
// falls back to rel as given (relative to cwd).
func ResolvePath(dir, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	cand := filepath.Join(dir, rel)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return rel
}

type assumptionsFileWrapper struct {
	Assumptions yaml.Node `yaml:"assumptions"`
}

// LoadAssumptionsFile applies a preset file onto base. The file holds a single
// top-level "assumptions" mapping.
func LoadAssumptionsFile(path string, base model.Assumptions) (model.Assumptions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	var w assumptionsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return base, fmt.Errorf("parse %s: %w", path, err)
	}
	if isEmptyNode(&w.Assumptions) {
		return base, fmt.Errorf("%s: missing top-level assumptions", path)
	}
	doc, err := yaml.Marshal(&w.Assumptions)
	if err != nil {
		return base, err
	}
	out, err := overlayYAML(base, doc)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func overlayYAML(base model.Assumptions, doc []byte) (model.Assumptions, error) {
	jsonData, err := ValidateAssumptionsYAML(doc)
	if err != nil {
		return base, err
	}
	return OverlayJSON(base, jsonData)
}

func isEmptyNode(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var result *multierror.Error
	if _, err := scenario.Lookup(c.Scenario); err != nil {
		result = multierror.Append(result, err)
	}
	if c.DiscountRate <= 0 || c.DiscountRate >= 1 {
		result = multierror.Append(result, fmt.Errorf("discount_rate must be in (0, 1), got %g", c.DiscountRate))
	}
	if err := c.resolved.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("assumptions invalid: %w", err))
	}
	return result.ErrorOrNil()
}
