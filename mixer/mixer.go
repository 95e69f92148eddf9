// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audloop/clip"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ChunkDivisor sets the render chunk to 1/ChunkDivisor of the shortest track
// so loop wraps are detected at a fine grain.
const ChunkDivisor = 64

// trackSet is an immutable snapshot of the mixer's tracks, ordered by name.
type trackSet struct {
	ordered []*Track
	byName  map[string]*Track
	// format carries the output channels and sample rate; Len is unused.
	format clip.Format
	maxLen int
	minLen int
}

var emptySet = &trackSet{byName: map[string]*Track{}}

func (s *trackSet) with(t *Track) *trackSet {
	next := &trackSet{
		ordered: append(slices.Clone(s.ordered), t),
		byName:  maps.Clone(s.byName),
		format:  s.format,
		maxLen:  max(s.maxLen, t.SampleCount()),
		minLen:  t.SampleCount(),
	}
	next.byName[t.Name()] = t

	slices.SortFunc(next.ordered, func(a, b *Track) int {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		}
		return 0
	})

	if len(s.ordered) > 0 {
		next.minLen = min(s.minLen, t.SampleCount())
	} else {
		f := t.Format()
		next.format = clip.Format{Channels: f.Channels, SampleRate: f.SampleRate}
	}

	return next
}

// compatible checks t against the output format of the set.
func (s *trackSet) compatible(t *Track) error {
	if len(s.ordered) == 0 {
		return nil
	}

	f := t.Format()
	if f.Channels != s.format.Channels || f.SampleRate != s.format.SampleRate {
		return &clip.MismatchError{
			Name: t.Name(),
			Want: s.format,
			Got:  clip.Format{Channels: f.Channels, SampleRate: f.SampleRate},
		}
	}

	return nil
}

// Mixer renders a set of looping tracks and switches their clips at loop
// boundaries.
//
// Control methods (Initialize, AddTrack, UpdatePendingClips, NeedsAudio, Play
// and the transport passthroughs) may be called from any goroutine.
// OnGetData belongs to the single render goroutine.
type Mixer struct {
	loader      clip.Loader
	log         zerolog.Logger
	concurrency int

	mu          sync.Mutex // serializes Initialize and AddTrack
	initialized bool
	tracks      atomic.Pointer[trackSet]

	pending *pendingUpdates

	// chunk is published by Initialize after tracks; the render goroutine
	// sizes mix from it on its first call.
	chunk atomic.Int32

	// render goroutine only
	mix    []int16
	pos    int
	cycles int

	transportMu sync.Mutex
	transport   Transport
	loop        atomic.Bool
}

type Option func(*Mixer)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Mixer) { m.log = l }
}

// WithLoadConcurrency bounds how many tracks Initialize loads in parallel.
func WithLoadConcurrency(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// New returns a mixer that resolves clip names through loader.
func New(loader clip.Loader, opts ...Option) *Mixer {
	m := &Mixer{
		loader:      loader,
		log:         zerolog.Nop(),
		concurrency: runtime.GOMAXPROCS(0),
		pending:     newPendingUpdates(),
	}
	m.tracks.Store(emptySet)
	m.loop.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Initialize loads every track of tracks (track name to clip names) and sizes
// the render chunk. Tracks whose clips fail to load or whose format differs
// from the first track are skipped and logged; Initialize fails only when no
// track is left.
func (m *Mixer) Initialize(ctx context.Context, tracks map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return ErrAlreadyInitialized
	}

	names := slices.Sorted(maps.Keys(tracks))
	built := make([]*Track, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, name := range names {
		g.Go(func() error {
			t, err := m.buildTrack(gctx, name, tracks[name])
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				m.log.Warn().Err(err).Str("track", name).Msg("skipping track")
				return nil
			}
			built[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading tracks: %w", err)
	}

	set := m.tracks.Load()
	for _, t := range built {
		if t == nil {
			continue
		}
		if _, dup := set.byName[t.Name()]; dup {
			m.log.Warn().Str("track", t.Name()).Msg("skipping duplicate track")
			continue
		}
		if err := set.compatible(t); err != nil {
			m.log.Warn().Err(err).Str("track", t.Name()).Msg("skipping track")
			continue
		}
		set = set.with(t)
	}

	if len(set.ordered) == 0 {
		return ErrNoTracks
	}

	chunk := set.minLen / ChunkDivisor
	chunk -= chunk % set.format.Channels
	if chunk == 0 {
		return fmt.Errorf("%w: %d samples", ErrTrackTooShort, set.minLen)
	}

	m.tracks.Store(set)
	m.chunk.Store(int32(chunk))
	m.initialized = true

	m.log.Info().
		Int("tracks", len(set.ordered)).
		Int("channels", set.format.Channels).
		Int("sample_rate", set.format.SampleRate).
		Int("loop_length", set.maxLen).
		Int("chunk", chunk).
		Msg("mixer initialized")

	return nil
}

// buildTrack loads every clip of a track. Any failed clip fails the track.
func (m *Mixer) buildTrack(ctx context.Context, name string, sources []string) (*Track, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("track %q: %w", name, clip.ErrEmptyClip)
	}

	t := NewTrack(name)
	for _, src := range sources {
		c, err := m.loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", name, err)
		}
		if err := t.AddClip(src, c); err != nil {
			return nil, fmt.Errorf("track %q: %w", name, err)
		}
	}

	m.log.Debug().Str("track", name).Int("clips", len(sources)).Msg("track loaded")

	return t, nil
}

// AddTrack loads and adds one more track. The whole call fails if any clip
// fails to load or the track's format does not match the mixer. Tracks added
// after Initialize may extend the loop length but never resize the render
// chunk.
func (m *Mixer) AddTrack(ctx context.Context, name string, sources []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.tracks.Load()
	if _, ok := set.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTrack, name)
	}

	t, err := m.buildTrack(ctx, name, sources)
	if err != nil {
		return err
	}
	if err := set.compatible(t); err != nil {
		return err
	}

	m.tracks.Store(set.with(t))
	m.log.Info().Str("track", name).Int("clips", len(sources)).Msg("track added")

	return nil
}

// Track returns the named track for out-of-band use, such as seeding pending
// clips before playback starts.
func (m *Mixer) Track(name string) (*Track, bool) {
	t, ok := m.tracks.Load().byName[name]
	return t, ok
}

// Tracks lists track names in render order.
func (m *Mixer) Tracks() []string {
	set := m.tracks.Load()
	names := make([]string, len(set.ordered))
	for i, t := range set.ordered {
		names[i] = t.Name()
	}

	return names
}

// UpdatePendingClips stages each clip for the first track, in name order, that
// owns it. Requests take effect together at the next loop wrap. It reports
// whether anything was staged.
func (m *Mixer) UpdatePendingClips(clips ...string) bool {
	set := m.tracks.Load()

	var reqs []request
	for _, name := range clips {
		for _, t := range set.ordered {
			if t.HasClip(name) {
				reqs = append(reqs, request{track: t.Name(), clip: name})
				break
			}
		}
	}

	if len(reqs) == 0 {
		m.log.Debug().Strs("clips", clips).Msg("no track owns the requested clips")
		return false
	}

	m.pending.stage(reqs)
	m.log.Debug().Int("staged", len(reqs)).Msg("pending clips staged")

	return true
}

// NeedsAudio reports whether the last wrap consumed all staged requests and
// the control side should stage the next cycle.
func (m *Mixer) NeedsAudio() bool { return m.pending.NeedsAudio() }

// Staged returns a copy of the requests waiting for the next wrap.
func (m *Mixer) Staged() map[string]string { return m.pending.snapshot() }

// OnGetData renders the next chunk into the shared mix buffer and returns it.
// The slice is reused by the following call. It reports false only when the
// mixer was never initialized.
func (m *Mixer) OnGetData() ([]int16, bool) {
	if len(m.mix) == 0 {
		n := m.chunk.Load()
		if n == 0 {
			return nil, false
		}
		m.mix = make([]int16, n)
	}

	clear(m.mix)
	set := m.tracks.Load()

	if m.pos+len(m.mix) >= set.maxLen {
		m.pending.post(set)
	}

	for _, t := range set.ordered {
		t.Render(m.mix, m.pos)
	}

	m.pos += len(m.mix)
	if m.pos >= set.maxLen {
		m.pos = 0
		m.cycles++
	}

	return m.mix, true
}

// OnSeek is a no-op; the loop cannot be repositioned.
func (m *Mixer) OnSeek(time.Duration) {}

// Channels of the output stream, 0 before the first track is added.
func (m *Mixer) Channels() int { return m.tracks.Load().format.Channels }

// SampleRate of the output stream, 0 before the first track is added.
func (m *Mixer) SampleRate() int { return m.tracks.Load().format.SampleRate }

// LoopLength is the global loop length, the longest track's sample count.
func (m *Mixer) LoopLength() int { return m.tracks.Load().maxLen }

// ChunkSize is the number of samples produced per OnGetData call.
func (m *Mixer) ChunkSize() int { return int(m.chunk.Load()) }
