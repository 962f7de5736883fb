// Package streamblocks extracts typed structured blocks from a stream of
// arbitrarily-chunked text, alongside pass-through text that sits outside
// any block. A Processor ties together a chunk Framer, one syntax's
// Registry, and the block state Machine, and turns the whole pipeline
// into a single typed event stream.
package streamblocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/samsaffron/streamblocks/event"
	"github.com/samsaffron/streamblocks/framer"
	"github.com/samsaffron/streamblocks/internal/idgen"
	"github.com/samsaffron/streamblocks/machine"
	"github.com/samsaffron/streamblocks/registry"
)

// Option configures a Processor at construction time.
type Option func(*config)

type config struct {
	maxLineLength      int
	maxBlockSize       int
	linesBuffer        int
	emitTextDeltas     bool
	emitOriginalEvents bool
	strictUnknownType  bool
	logger             *slog.Logger
}

// WithMaxLineLength bounds the display width of any single line before it
// reaches the block machine; longer lines are truncated, never dropped.
func WithMaxLineLength(n int) Option {
	return func(c *config) { c.maxLineLength = n }
}

// WithMaxBlockSize bounds the accumulated raw size of any one candidate
// block, in bytes. Exceeding it rejects the block rather than growing it
// without limit.
func WithMaxBlockSize(n int) Option {
	return func(c *config) { c.maxBlockSize = n }
}

// WithLinesBuffer sets the channel buffer depth used by ProcessStream.
// Zero (the default) means unbuffered.
func WithLinesBuffer(n int) Option {
	return func(c *config) { c.linesBuffer = n }
}

// WithEmitTextDeltas additionally emits a TextDelta event for every
// non-empty input chunk, after that chunk's line events, whether the chunk
// fell inside a block or not (InsideBlock reports which), alongside the
// line-oriented TextContent events the processor always emits.
func WithEmitTextDeltas(enabled bool) Option {
	return func(c *config) { c.emitTextDeltas = enabled }
}

// WithEmitOriginalEvents additionally emits an OriginalEvent wrapping the
// untouched source chunk for every call to ProcessAdapterChunk, alongside
// the normalized events that chunk's extracted text produced. Has no
// effect on plain ProcessChunk calls, which never carry an original
// payload to wrap.
func WithEmitOriginalEvents(enabled bool) Option {
	return func(c *config) { c.emitOriginalEvents = enabled }
}

// WithStrictUnknownType rejects any block whose block_type has no
// registered schema, instead of the default permissive fallback parse.
func WithStrictUnknownType(enabled bool) Option {
	return func(c *config) { c.strictUnknownType = enabled }
}

// WithLogger attaches a structured logger; without this option the
// processor logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Processor drives one logical stream end to end. It is not safe for
// concurrent use and is not reusable once Finalize has been called.
type Processor struct {
	cfg config
	fr  *framer.Framer
	mc  *machine.Machine

	lineNumber int
	finalized  bool
	started    bool
}

// New builds a Processor over reg, whose syntax and block types are set up
// ahead of time by the caller.
func New(reg *registry.Registry, opts ...Option) *Processor {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	fr := framer.New(framer.WithMaxLineLength(cfg.maxLineLength))
	mc := machine.New(reg, &idgen.BlockIDs{},
		machine.WithMaxBlockSize(cfg.maxBlockSize),
		machine.WithStrictUnknownType(cfg.strictUnknownType),
	)

	return &Processor{cfg: cfg, fr: fr, mc: mc}
}

// ProcessChunk feeds one chunk of raw input through the framer and machine,
// returning every event it produced, in order. Safe to call repeatedly as
// new chunks arrive; call Finalize once after the last chunk.
func (p *Processor) ProcessChunk(chunk []byte) []event.Event {
	return p.processChunk(nil, chunk)
}

// ProcessAdapterChunk is ProcessChunk plus an original upstream payload
// (typically the raw event a StreamAdapter pulled text out of). When the
// processor was built with WithEmitOriginalEvents, original is wrapped in
// an OriginalEvent ahead of the events text itself produced.
func (p *Processor) ProcessAdapterChunk(original any, text []byte) []event.Event {
	return p.processChunk(original, text)
}

func (p *Processor) processChunk(original any, chunk []byte) []event.Event {
	var events []event.Event
	if !p.started {
		p.started = true
		events = append(events, event.NewStreamStarted(time.Now()))
	}

	if p.cfg.emitOriginalEvents && original != nil {
		events = append(events, event.NewOriginalEvent(time.Now(), original))
	}

	lines := p.fr.Feed(chunk)
	for _, line := range lines {
		events = append(events, p.mc.ProcessLine(line)...)
	}

	if p.cfg.emitTextDeltas && len(chunk) > 0 {
		if c := p.mc.ActiveCandidate(); c != nil {
			events = append(events, event.NewTextDelta(time.Now(), string(chunk), true, c.Section, c.InlineMetadata))
		} else {
			events = append(events, event.NewTextDelta(time.Now(), string(chunk), false, "", nil))
		}
	}

	p.cfg.logger.Debug("processed chunk", "bytes", len(chunk), "events", len(events))
	return events
}

// Finalize flushes any buffered partial line and any still-open candidate,
// then emits StreamFinished. Call exactly once, after the last chunk.
func (p *Processor) Finalize() []event.Event {
	if p.finalized {
		return nil
	}
	p.finalized = true

	var events []event.Event
	for _, line := range p.fr.Flush() {
		events = append(events, p.mc.ProcessLine(line)...)
	}
	events = append(events, p.mc.Flush()...)
	events = append(events, event.NewStreamFinished(time.Now()))
	return events
}

// ProcessStream drives chunks read from next (which returns io.EOF-style
// ok=false once exhausted) and returns a channel of events, closed once
// the stream is finalized or ctx is cancelled. This mirrors a pull-based
// async generator using a goroutine-fed channel, the idiomatic Go
// substitute for the async iterator this pipeline models conceptually.
func (p *Processor) ProcessStream(ctx context.Context, next func() ([]byte, bool)) <-chan event.Event {
	out := make(chan event.Event, p.cfg.linesBuffer)

	go func() {
		defer close(out)
		for {
			chunk, ok := next()
			if !ok {
				break
			}
			for _, ev := range p.ProcessChunk(chunk) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
		for _, ev := range p.Finalize() {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
