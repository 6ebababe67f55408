package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLoadtestAgainstMiniredis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	var out bytes.Buffer

	err := runLoadtest(context.Background(), &out, loadtestOptions{sessions: 5, concurrency: 2, ops: 20})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "using miniredis")
	assert.Contains(t, out.String(), "authenticate: ops=20 failures=0")
	assert.Contains(t, out.String(), "reissue: ops=20 failures=0")
}

func TestRunLoadtestRejectsBadOptions(t *testing.T) {
	err := runLoadtest(context.Background(), &bytes.Buffer{}, loadtestOptions{sessions: 1, concurrency: 0, ops: 1})
	assert.Error(t, err)
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, time.Duration(1), percentile(samples, 0))
	assert.Equal(t, time.Duration(5), percentile(samples, 50))
	assert.Equal(t, time.Duration(10), percentile(samples, 100))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "loadtest"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
