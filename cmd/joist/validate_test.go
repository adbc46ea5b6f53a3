package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCmd_IntervalFlag(t *testing.T) {
	flag := validateCmd.Flags().Lookup("interval")
	require.NotNil(t, flag)
	assert.Equal(t, "0s", flag.DefValue)
	assert.Contains(t, flag.Usage, "even when unchanged")
}
