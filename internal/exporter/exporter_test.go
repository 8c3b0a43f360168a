package exporter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xadd-go/xadd/internal/exporter"
	"github.com/xadd-go/xadd/internal/importer"
	"github.com/xadd-go/xadd/internal/xadd"
)

func TestFormatLeaf(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "leaf.xadd", "([x + 1])")
	require.NoError(t, err)

	out, err := exporter.Format(d)
	require.NoError(t, err)
	assert.Equal(t, "([x + 1])", out)
}

func TestFormatIndented(t *testing.T) {
	eng := xadd.NewEngine()
	d, err := importer.Import(eng, "internal.xadd", "([x <= 0] ([2]) ([1]))")
	require.NoError(t, err)

	out, err := exporter.FormatIndented(d)
	require.NoError(t, err)
	assert.Contains(t, out, "if x <= 0:")
	assert.Contains(t, out, "else:")
}
