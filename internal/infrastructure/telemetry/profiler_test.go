package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStartProfiler_Disabled(t *testing.T) {
	p, err := StartProfiler(ProfilingConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	var nilProfiler *Profiler
	assert.False(t, nilProfiler.IsEnabled())
	assert.NoError(t, nilProfiler.Stop())
}

func TestProfilingConfig_Validate(t *testing.T) {
	_, err := ProfilingConfig{Enabled: true, Profiles: []string{"cpu", "heap"}}.validate()
	assert.ErrorContains(t, err, "server address is required")
	assert.ErrorContains(t, err, "application name is required")
	assert.ErrorContains(t, err, `unknown profile type "heap"`)

	types, err := ProfilingConfig{Server: "http://localhost:4040", Application: "storefront"}.validate()
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileInuseSpace}, types)

	types, err = ProfilingConfig{
		Server:      "http://localhost:4040",
		Application: "storefront",
		Profiles:    []string{"goroutines", "alloc_space"},
	}.validate()
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileGoroutines, pyroscope.ProfileAllocSpace}, types)
}

func TestStartProfiler_RejectsInvalidConfig(t *testing.T) {
	_, err := StartProfiler(ProfilingConfig{Enabled: true}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestLabeled(t *testing.T) {
	var route, method string
	var routeOK, resourceOK bool
	Labeled(context.Background(), func(ctx context.Context) {
		route, routeOK = pprof.Label(ctx, LabelRoute)
		method, _ = pprof.Label(ctx, LabelMethod)
		_, resourceOK = pprof.Label(ctx, LabelResource)
	}, LabelRoute, "/api/v1/shipping/quotes", LabelMethod, "POST", LabelResource, "", "dangling")

	assert.True(t, routeOK)
	assert.Equal(t, "/api/v1/shipping/quotes", route)
	assert.Equal(t, "POST", method)
	assert.False(t, resourceOK, "empty values are not attached")

	called := false
	Labeled(context.Background(), func(context.Context) { called = true })
	assert.True(t, called)
}
