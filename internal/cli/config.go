package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/deltadb/codec"
	"github.com/hupe1980/deltadb/model"
)

// DemoConfig describes a demo workload.
type DemoConfig struct {
	// Layout is the table layout: "document" or "columnar".
	Layout string `yaml:"layout"`

	// Compression is the document payload compression: "none", "lz4" or "zstd".
	Compression string `yaml:"compression,omitempty"`

	// Codec names the payload codec ("go-json" or "json").
	Codec string `yaml:"codec,omitempty"`

	// MemoryLimit caps committed payload bytes. Zero is unlimited.
	MemoryLimit int64 `yaml:"memory_limit,omitempty"`

	// Records is the number of items loaded before the queries run.
	Records int `yaml:"records"`

	// Groups is the number of distinct item groups.
	Groups int `yaml:"groups,omitempty"`

	// Delete removes the items of this group after loading, if set.
	Delete string `yaml:"delete,omitempty"`

	Queries []QueryConfig `yaml:"queries"`
}

// QueryConfig is one named query. Group selects by index equality, Op and
// Score filter on the score; both together are a conjunction.
type QueryConfig struct {
	Name  string   `yaml:"name"`
	Group string   `yaml:"group,omitempty"`
	Op    string   `yaml:"op,omitempty"`
	Score *float64 `yaml:"score,omitempty"`
}

// LoadDemoConfig reads and validates a demo configuration file.
// Unknown fields are rejected.
func LoadDemoConfig(path string) (*DemoConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseDemoConfig(data)
}

// ParseDemoConfig parses and validates a demo configuration.
func ParseDemoConfig(data []byte) (*DemoConfig, error) {
	var cfg DemoConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *DemoConfig) validate() error {
	if _, err := model.ParseLayout(c.Layout); err != nil {
		return err
	}
	if _, err := model.ParseCompression(c.Compression); err != nil {
		return err
	}
	if c.Codec != "" {
		if _, ok := codec.ByName(c.Codec); !ok {
			return fmt.Errorf("unknown codec %q", c.Codec)
		}
	}
	if c.Records < 0 {
		return fmt.Errorf("records must not be negative")
	}
	for i, q := range c.Queries {
		if q.Name == "" {
			return fmt.Errorf("query %d: name is required", i)
		}
		if q.Group == "" && q.Op == "" {
			return fmt.Errorf("query %q: needs a group or an op", q.Name)
		}
		if q.Op != "" {
			if _, err := model.ParseOperator(q.Op); err != nil {
				return fmt.Errorf("query %q: %w", q.Name, err)
			}
			if q.Score == nil {
				return fmt.Errorf("query %q: op requires a score", q.Name)
			}
		}
	}
	return nil
}
