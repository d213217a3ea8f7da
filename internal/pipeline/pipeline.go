// Package pipeline orchestrates the field extraction flow: recognition
// fan-out, region merging, the extraction cascade, cleaning and confidence
// fusion.
package pipeline

import (
	"errors"
	"time"

	"github.com/MeKo-Tech/fieldex/internal/engine"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/MeKo-Tech/fieldex/internal/schema"
	"github.com/MeKo-Tech/fieldex/internal/session"
)

// ErrNoEngines is returned when image processing is requested without any
// configured recognition engine.
var ErrNoEngines = errors.New("pipeline: no recognition engines configured")

// Config holds configuration for the extraction pipeline.
type Config struct {
	Language      string
	SchemaFile    string // optional user-supplied table, overrides Language
	IoUThreshold  float64
	EngineTimeout time.Duration
	StreamDelay   time.Duration // pacing delay between streamed region emissions
	Suggestions   bool          // emit correction suggestions for low-confidence regions
}

// DefaultConfig returns a default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Language:      "en",
		IoUThreshold:  region.DefaultIoUThreshold,
		EngineTimeout: engine.DefaultTimeout,
		StreamDelay:   50 * time.Millisecond,
		Suggestions:   true,
	}
}

// Pipeline runs the field extraction flow. It is safe for concurrent use
// across documents; corrections against a single session are serialized by
// the session store.
type Pipeline struct {
	cfg      Config
	registry *schema.Registry
	engines  []engine.Engine
	store    session.Store
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg     Config
	engines []engine.Engine
	store   session.Store
}

// NewBuilder creates a new pipeline builder with default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithLanguage sets the active schema language.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Language = lang
	}
	return b
}

// WithSchemaFile sets a user-supplied schema table, overriding the built-in
// language tables.
func (b *Builder) WithSchemaFile(path string) *Builder {
	b.cfg.SchemaFile = path
	return b
}

// WithIoUThreshold overrides the region-merge overlap threshold.
func (b *Builder) WithIoUThreshold(t float64) *Builder {
	if t > 0 && t < 1 {
		b.cfg.IoUThreshold = t
	}
	return b
}

// WithEngines sets the recognition engines consulted during image processing.
func (b *Builder) WithEngines(engines ...engine.Engine) *Builder {
	b.engines = engines
	return b
}

// WithEngineTimeout bounds a single engine invocation.
func (b *Builder) WithEngineTimeout(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.EngineTimeout = d
	}
	return b
}

// WithStore sets the session store; defaults to an in-memory store.
func (b *Builder) WithStore(s session.Store) *Builder {
	b.store = s
	return b
}

// WithStreamDelay sets the pacing delay for streamed region emission.
func (b *Builder) WithStreamDelay(d time.Duration) *Builder {
	if d >= 0 {
		b.cfg.StreamDelay = d
	}
	return b
}

// WithSuggestions toggles correction-suggestion generation.
func (b *Builder) WithSuggestions(enabled bool) *Builder {
	b.cfg.Suggestions = enabled
	return b
}

// Build loads the schema and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	var (
		sch *schema.Schema
		err error
	)
	if b.cfg.SchemaFile != "" {
		sch, err = schema.LoadFile(b.cfg.SchemaFile)
	} else {
		sch, err = schema.Load(b.cfg.Language)
	}
	if err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}

	return &Pipeline{
		cfg:      b.cfg,
		registry: schema.NewRegistry(sch),
		engines:  b.engines,
		store:    store,
	}, nil
}

// Schema returns the currently active schema.
func (p *Pipeline) Schema() *schema.Schema { return p.registry.Active() }

// SetLanguage swaps the active schema table at runtime. Cached regions stay
// valid; field maps computed under the previous language are recomputed the
// next time their session is processed or corrected.
func (p *Pipeline) SetLanguage(lang string) error {
	return p.registry.SetLanguage(lang)
}

// Store exposes the session store.
func (p *Pipeline) Store() session.Store { return p.store }
