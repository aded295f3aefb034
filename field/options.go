// SPDX-License-Identifier: MIT
// Package field: functional configuration of ComputeB/ComputeH. This file
// defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal).
//
// Design goals:
//   - Deterministic results: the worker count never changes the summation
//     order across sources.
//   - No dead switches: each option changes behavior and is covered by tests.

package field

import (
	"github.com/katalvlaran/magfield/broadcast"
	"go.uber.org/zap"
)

// PathPolicy decides how sources with paths shorter than the longest path
// are treated.
type PathPolicy int

const (
	// PadPaths holds the last pose of a shorter path (edge padding).
	PadPaths PathPolicy = iota
	// StrictPaths requires every path length to be 1 or the maximum.
	StrictPaths
)

// ---------- Defaults (single source of truth) ----------
const (
	// DefaultSqueeze removes size-1 axes (except the field axis) from results.
	DefaultSqueeze = true
	// DefaultWorkers evaluates sources sequentially.
	DefaultWorkers = 1
	// DefaultPathPolicy pads shorter paths.
	DefaultPathPolicy = PadPaths
)

// ---------- Internal panic messages ----------
const (
	panicWorkersInvalid = "field: WithWorkers: n must be >= 1"
	panicModeInvalid    = "field: WithMode: unknown broadcast mode"
	panicPolicyInvalid  = "field: WithPathPolicy: unknown policy"
)

// Option mutates internal options. Constructors panic only on nonsensical
// values (programmer error).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	squeeze    bool
	workers    int
	logger     *zap.Logger
	mode       broadcast.Mode
	modeSet    bool // false ⇒ infer from the observer form
	pathPolicy PathPolicy
}

// WithSqueeze toggles removal of size-1 axes. With false the result always
// has rank 3.
func WithSqueeze(on bool) Option {
	return func(o *Options) { o.squeeze = on }
}

// WithWorkers evaluates up to n sources concurrently.
//
// Complexity:
//   - Peak memory grows with n: each in-flight source holds its own batch.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = n }
}

// WithLogger sets the debug logger; nil restores the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.logger = l
	}
}

// WithMode forces the pairing mode instead of inferring it from how the
// observers were supplied (Ragged ⇒ CoIndexed, otherwise Outer).
func WithMode(m broadcast.Mode) Option {
	if m != broadcast.Outer && m != broadcast.CoIndexed {
		panic(panicModeInvalid)
	}

	return func(o *Options) {
		o.mode = m
		o.modeSet = true
	}
}

// WithPathPolicy selects padding or strict checking of path lengths.
func WithPathPolicy(p PathPolicy) Option {
	if p != PadPaths && p != StrictPaths {
		panic(panicPolicyInvalid)
	}

	return func(o *Options) { o.pathPolicy = p }
}

func defaultOptions() Options {
	return Options{
		squeeze:    DefaultSqueeze,
		workers:    DefaultWorkers,
		logger:     zap.NewNop(),
		pathPolicy: DefaultPathPolicy,
	}
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
