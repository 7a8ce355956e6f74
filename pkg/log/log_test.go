package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithLevel(t *testing.T) {
	l, err := NewWithLevel("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewWithLevel("loud")
	assert.Error(t, err)
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Debugf("dma from 0x%04X", 0xC000)

	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "dma from 0xC000")
}
