package goarg

import "sync"

// UnknownPolicy controls how input keys matching no field are handled.
type UnknownPolicy int

const (
	UnknownStrip       UnknownPolicy = iota // Drop unknown keys.
	UnknownStrict                           // Reject unknown keys with an InvalidInputError.
	UnknownPassthrough                      // Keep unknown keys on Base.Extra.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrip:
		return "strip"
	case UnknownStrict:
		return "strict"
	case UnknownPassthrough:
		return "passthrough"
	}
	return "unknown"
}

// DefaultMaxDepth bounds the nesting of schema-bound values during Bind.
const DefaultMaxDepth = 32

// BindOpt bundles binding options.
type BindOpt struct {
	Unknown   UnknownPolicy
	WeakTypes bool // Convert between strings, numbers and booleans.
	MaxDepth  int  // 0 means DefaultMaxDepth.
}

// SerializeOpt bundles serialization options.
type SerializeOpt struct {
	// OmitDefaulted drops fields that were neither supplied nor null, only
	// materialized by a default during the last bind.
	OmitDefaulted bool
}

var (
	bindOptMu      sync.RWMutex
	defaultBindOpt = BindOpt{MaxDepth: DefaultMaxDepth}
)

// SetDefaultBindOpt replaces the options Bind uses when none are passed.
func SetDefaultBindOpt(o BindOpt) {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	bindOptMu.Lock()
	defaultBindOpt = o
	bindOptMu.Unlock()
}

// DefaultBindOpt returns the options Bind uses when none are passed.
func DefaultBindOpt() BindOpt {
	bindOptMu.RLock()
	defer bindOptMu.RUnlock()
	return defaultBindOpt
}

// resolveBindOpt returns the last explicit option, or the default.
func resolveBindOpt(opts []BindOpt) BindOpt {
	o := DefaultBindOpt()
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

func resolveSerializeOpt(opts []SerializeOpt) SerializeOpt {
	if len(opts) == 0 {
		return SerializeOpt{}
	}
	return opts[len(opts)-1]
}
