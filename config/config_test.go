package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSeason(t *testing.T) {
	s, err := ResolveSeason("")
	require.NoError(t, err)
	assert.Equal(t, ValidSeasons[0], s)

	s, err = ResolveSeason("2023-24")
	require.NoError(t, err)
	assert.Equal(t, "2023-24", s)

	_, err = ResolveSeason("1997-98")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1997-98")
}
