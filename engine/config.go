package engine

import (
	"io"
	"time"

	"gopkg.in/yaml.v2"
)

// rawConfig mirrors Config's YAML shape with QueryTimeout as a
// "30s"-style string, since yaml.v2 has no built-in time.Duration
// codec.
type rawConfig struct {
	QueryTimeout             string `yaml:"query_timeout"`
	NullsFirstDefault        *bool  `yaml:"nulls_first_default"`
	CaseSensitiveIdentifiers bool   `yaml:"case_sensitive_identifiers"`
}

// Config carries the engine's tunable, query-independent behavior (spec
// §8 "Config"), loadable from YAML the way the teacher loads session
// variable defaults.
type Config struct {
	// QueryTimeout is parsed from YAML and stored; ExecuteSQL does not
	// read it, so no engine-imposed timeout is applied whatever its value
	// and only the caller's own Signal cancels a query.
	QueryTimeout time.Duration

	// NullsFirstDefault overrides spec §4.6/§9's "NULLs low" default
	// (NULLs first ascending, last descending) when set.
	NullsFirstDefault *bool

	// CaseSensitiveIdentifiers is parsed from YAML and stored; neither
	// the parser nor the evaluator consults it, so identifier matching
	// is the same whatever its value.
	CaseSensitiveIdentifiers bool
}

// DefaultConfig is the zero-configuration behavior: no timeout, NULLs
// low, CaseSensitiveIdentifiers false.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads a YAML document into a Config, starting from
// DefaultConfig's zero values for anything the document omits.
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.NullsFirstDefault = raw.NullsFirstDefault
	cfg.CaseSensitiveIdentifiers = raw.CaseSensitiveIdentifiers
	if raw.QueryTimeout != "" {
		d, err := time.ParseDuration(raw.QueryTimeout)
		if err != nil {
			return nil, err
		}
		cfg.QueryTimeout = d
	}
	return cfg, nil
}
