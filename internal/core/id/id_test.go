package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("42")
	require.NoError(t, err)
	assert.Equal(t, ID(42), v)

	for _, in := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "7", Format(7))
	assert.True(t, IsNil(0))
	assert.False(t, IsNil(1))
}
