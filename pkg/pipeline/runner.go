package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cola/pkg/buildinfo"
	"github.com/matzehuels/cola/pkg/cache"
	"github.com/matzehuels/cola/pkg/errors"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/render/nodelink"
)

// Runner encapsulates layout execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store results. Multiple goroutines can safely use the same Runner; each
// call builds its own layout.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Layout computes the layout of g, or returns the cached one for the same
// graph and options.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts graph.Options) (*Output, error) {
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "serialize graph")
	}
	optsData, err := json.Marshal(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "serialize options")
	}
	out := &Output{GraphHash: cache.Hash(graphData)}
	key := r.Keyer.LayoutKey(out.GraphHash, cache.LayoutKeyOpts{
		OptionsHash: cache.Hash(optsData),
		Version:     buildinfo.Version,
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if res, err := graph.UnmarshalResult(data); err == nil {
			out.Result, out.CacheHit = res, true
			out.Stats = Stats{NodeCount: len(res.Nodes), LinkCount: len(res.Links), GroupCount: len(res.Groups)}
			r.Logger.Debug("layout cache hit", "graph", out.GraphHash[:12])
			return out, nil
		}
		// If deserialization fails, fall through to recompute
	} else if err != nil {
		r.Logger.Warn("layout cache unavailable", "error", err)
	}

	res, stats, err := Compute(ctx, g, opts, r.Logger)
	if err != nil {
		return nil, err
	}
	res.RunID = uuid.NewString()
	out.Result, out.Stats = res, stats

	if data, err := graph.MarshalResult(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "error", err)
		}
	}

	r.Logger.Info("computed layout",
		"nodes", stats.NodeCount,
		"links", stats.LinkCount,
		"stress", fmt.Sprintf("%.4g", res.Stress),
		"duration", stats.LayoutTime)
	return out, nil
}

// Render draws res in format, or returns the cached artifact.
func (r *Runner) Render(ctx context.Context, res graph.Result, format string, opts nodelink.Options) ([]byte, error) {
	if !nodelink.ValidFormats[format] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	resultData, err := graph.MarshalResult(res)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize result for cache key")
	}
	optsData, _ := json.Marshal(opts)
	key := r.Keyer.ArtifactKey(cache.HashParts(resultData, optsData), cache.ArtifactKeyOpts{Format: format})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	start := time.Now()
	data, err := nodelink.Render(ctx, res, format, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("artifact cache write failed", "format", format, "error", err)
	}

	r.Logger.Debug("rendered output", "format", format, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
