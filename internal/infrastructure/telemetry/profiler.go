package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilingConfig points the continuous profiler at a Pyroscope server.
// Profiles names the profile types; empty means cpu and inuse_space.
type ProfilingConfig struct {
	Enabled     bool
	Server      string
	Application string
	User        string
	Password    string
	Profiles    []string
}

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":           pyroscope.ProfileCPU,
	"alloc_objects": pyroscope.ProfileAllocObjects,
	"alloc_space":   pyroscope.ProfileAllocSpace,
	"inuse_objects": pyroscope.ProfileInuseObjects,
	"inuse_space":   pyroscope.ProfileInuseSpace,
	"goroutines":    pyroscope.ProfileGoroutines,
}

func (c ProfilingConfig) validate() ([]pyroscope.ProfileType, error) {
	var errs []error
	if c.Server == "" {
		errs = append(errs, errors.New("profiler server address is required"))
	}
	if c.Application == "" {
		errs = append(errs, errors.New("profiler application name is required"))
	}
	names := c.Profiles
	if len(names) == 0 {
		names = []string{"cpu", "inuse_space"}
	}
	types := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		t, ok := profileTypes[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown profile type %q", name))
			continue
		}
		types = append(types, t)
	}
	return types, errors.Join(errs...)
}

// Profiler is a running Pyroscope session. The zero value is disabled.
type Profiler struct {
	session *pyroscope.Profiler
	log     *zap.Logger
	stop    sync.Once
	err     error
}

// StartProfiler starts pushing profiles, or returns a disabled Profiler
// when cfg.Enabled is false.
func StartProfiler(cfg ProfilingConfig, log *zap.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		log.Info("Continuous profiling disabled")
		return &Profiler{log: log}, nil
	}
	types, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	tags := map[string]string{}
	if host, _ := os.Hostname(); host != "" {
		tags["hostname"] = host
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.Application,
		ServerAddress:     cfg.Server,
		BasicAuthUser:     cfg.User,
		BasicAuthPassword: cfg.Password,
		Logger:            log.Named("pyroscope").Sugar(),
		Tags:              tags,
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	log.Info("Continuous profiling enabled",
		zap.String("server", cfg.Server),
		zap.String("application", cfg.Application),
		zap.Strings("profiles", cfg.Profiles),
	)
	return &Profiler{session: session, log: log}, nil
}

func (p *Profiler) IsEnabled() bool {
	return p != nil && p.session != nil
}

// Stop flushes buffered profiles once; later calls return the first result.
func (p *Profiler) Stop() error {
	if !p.IsEnabled() {
		return nil
	}
	p.stop.Do(func() {
		if err := p.session.Stop(); err != nil {
			p.err = fmt.Errorf("stop pyroscope: %w", err)
			return
		}
		p.log.Info("Continuous profiling stopped")
	})
	return p.err
}

// Label keys set on request samples.
const (
	LabelMethod   = "method"
	LabelRoute    = "route"
	LabelResource = "resource"
)

// Labeled runs fn with the key/value pairs attached to the goroutine's
// profile samples. Pairs with an empty value are skipped.
func Labeled(ctx context.Context, fn func(context.Context), pairs ...string) {
	kept := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			kept = append(kept, pairs[i], pairs[i+1])
		}
	}
	if len(kept) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(kept...), fn)
}
