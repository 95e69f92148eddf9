// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audloop/clip"
	"github.com/ik5/audloop/utils"
)

const (
	// Gain scales every clip sample before it is mixed.
	Gain = 0.5
	// FadeDuration is the length of the crossfade at a loop wrap. It counts
	// frames, so a stereo fade spans twice as many interleaved samples.
	FadeDuration = 5 * time.Millisecond

	noClip = -1
)

// clipTable is an immutable snapshot of a track's clips. AddClip publishes a
// new table; indices into clips never change once assigned.
type clipTable struct {
	names  []string
	clips  []*clip.Clip
	index  map[string]int32
	format clip.Format
	fade   int
}

func (t *clipTable) lookup(name string) (int32, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Track is a slot of interchangeable, equal-length clips. One clip is active
// at a time; a pending clip takes over at the next wrap of the active one.
//
// AddClip may be called from any goroutine. SetPendingClip and Render are
// meant for the render goroutine and never block or allocate.
type Track struct {
	name string

	mu    sync.Mutex // serializes AddClip
	table atomic.Pointer[clipTable]

	active  atomic.Int32
	pending atomic.Int32
}

func NewTrack(name string) *Track {
	t := &Track{name: name}
	t.table.Store(&clipTable{index: map[string]int32{}})
	t.active.Store(noClip)
	t.pending.Store(noClip)

	return t
}

func (t *Track) Name() string { return t.name }

// AddClip stores c under name. The first clip fixes the track's format and
// fade length; later clips must match it exactly. Adding a clip under an
// existing name replaces it in place.
func (t *Track) AddClip(name string, c *clip.Clip) error {
	if c == nil {
		return ErrNilClip
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.table.Load()
	if len(old.clips) > 0 && c.Format() != old.format {
		return &clip.MismatchError{Name: name, Want: old.format, Got: c.Format()}
	}

	next := &clipTable{
		names:  slices.Clone(old.names),
		clips:  slices.Clone(old.clips),
		index:  maps.Clone(old.index),
		format: old.format,
		fade:   old.fade,
	}

	if i, ok := next.index[name]; ok {
		next.clips[i] = c
	} else {
		next.index[name] = int32(len(next.clips))
		next.names = append(next.names, name)
		next.clips = append(next.clips, c)
	}

	if len(old.clips) == 0 {
		next.format = c.Format()
		next.fade = fadeLength(c)
	}

	t.table.Store(next)

	return nil
}

// fadeLength is FadeDuration expressed in interleaved samples.
func fadeLength(c *clip.Clip) int {
	frames := int64(c.SampleRate()) * int64(FadeDuration) / int64(time.Second)
	return int(frames) * c.Channels()
}

func (t *Track) HasClip(name string) bool {
	_, ok := t.table.Load().lookup(name)
	return ok
}

// SetPendingClip selects the clip to switch to at the next wrap. An unknown
// name clears the pending clip, which fades the track to silence, and
// returns false.
func (t *Track) SetPendingClip(name string) bool {
	i, ok := t.table.Load().lookup(name)
	if !ok {
		t.pending.Store(noClip)
		return false
	}

	t.pending.Store(i)
	return true
}

// Render mixes the track into dst for the window starting at the absolute
// position pos. It reports false, leaving dst untouched, when the track has
// neither an active nor a pending clip.
//
// When the window reaches the end of the active clip the last FadeLength
// samples are crossfaded towards the first sample of the pending clip (or
// silence) and the pending clip becomes active.
func (t *Track) Render(dst []int16, pos int) bool {
	// indices are loaded before the table: any index seen here is valid in
	// every later table.
	active := t.active.Load()
	pending := t.pending.Load()
	tbl := t.table.Load()

	if active == noClip {
		if pending == noClip {
			return false
		}
		active = pending
		t.active.Store(active)
	}

	cur := tbl.clips[active]
	samples := cur.Samples()
	length := len(samples)
	n := len(dst)
	offset := pos % length

	if offset+n < length {
		for i, s := range samples[offset : offset+n] {
			dst[i] = mixSample(dst[i], s)
		}
		return true
	}

	fade := min(tbl.fade, n)
	plain := n - fade

	for i := range plain {
		dst[i] = mixSample(dst[i], cur.At(offset+i))
	}

	var next float32
	if pending != noClip {
		next = float32(tbl.clips[pending].At(0))
	}

	for j := 1; j <= fade; j++ {
		i := plain + j - 1
		a := 1 - float32(j)/float32(fade)
		val := float32(int16(float32(cur.At(offset+i)) * Gain))
		// explicit conversions keep the products from being fused
		x := float32(a*val) + float32((1-a)*next)
		dst[i] = utils.AddInt16(dst[i], utils.ClampInt16(float32(math.Ceil(float64(x)))))
	}

	t.active.Store(pending)

	return true
}

func mixSample(acc, s int16) int16 {
	return utils.ClampInt16(float32(acc) + float32(s)*Gain)
}

// Format returns the track's canonical format, the zero Format when empty.
func (t *Track) Format() clip.Format { return t.table.Load().format }

func (t *Track) Channels() int   { return t.Format().Channels }
func (t *Track) SampleRate() int { return t.Format().SampleRate }

// SampleCount is the interleaved length shared by every clip of the track.
func (t *Track) SampleCount() int { return t.Format().Len }

// FadeLength is the crossfade length in interleaved samples.
func (t *Track) FadeLength() int { return t.table.Load().fade }

// Clips lists clip names in insertion order.
func (t *Track) Clips() []string { return slices.Clone(t.table.Load().names) }

func (t *Track) Active() (string, bool)  { return t.nameOf(t.active.Load()) }
func (t *Track) Pending() (string, bool) { return t.nameOf(t.pending.Load()) }

func (t *Track) nameOf(i int32) (string, bool) {
	if i == noClip {
		return "", false
	}

	return t.table.Load().names[i], true
}
