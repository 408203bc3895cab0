package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesDurationAndBools(t *testing.T) {
	require := require.New(t)

	doc := `
query_timeout: 30s
nulls_first_default: false
case_sensitive_identifiers: true
`
	cfg, err := LoadConfig(strings.NewReader(doc))
	require.NoError(err)
	require.Equal(30*time.Second, cfg.QueryTimeout)
	require.NotNil(cfg.NullsFirstDefault)
	require.False(*cfg.NullsFirstDefault)
	require.True(cfg.CaseSensitiveIdentifiers)
}

func TestLoadConfigDefaultsOnEmptyDocument(t *testing.T) {
	require := require.New(t)

	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(err)
	require.Equal(time.Duration(0), cfg.QueryTimeout)
	require.Nil(cfg.NullsFirstDefault)
	require.False(cfg.CaseSensitiveIdentifiers)
}

func TestLoadConfigRejectsInvalidDuration(t *testing.T) {
	require := require.New(t)

	_, err := LoadConfig(strings.NewReader("query_timeout: not-a-duration\n"))
	require.Error(err)
}

func TestDefaultConfigIsZeroValue(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	require.Equal(time.Duration(0), cfg.QueryTimeout)
	require.Nil(cfg.NullsFirstDefault)
	require.False(cfg.CaseSensitiveIdentifiers)
}
