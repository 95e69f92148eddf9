// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/ik5/audloop/clip"
)

func constClip(t testing.TB, channels, rate, n int, v int16) *clip.Clip {
	t.Helper()

	c, err := clip.New(channels, rate, slices.Repeat([]int16{v}, n))
	if err != nil {
		t.Fatalf("clip.New() error = %v", err)
	}

	return c
}

func rampClip(t testing.TB, n int) *clip.Clip {
	t.Helper()

	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i)
	}

	c, err := clip.New(1, 44100, samples)
	if err != nil {
		t.Fatalf("clip.New() error = %v", err)
	}

	return c
}

func newTestTrack(t testing.TB, clips map[string]int16, n int) *Track {
	t.Helper()

	tr := NewTrack("test")
	for _, name := range slices.Sorted(maps.Keys(clips)) {
		if err := tr.AddClip(name, constClip(t, 1, 44100, n, clips[name])); err != nil {
			t.Fatalf("AddClip(%q) error = %v", name, err)
		}
	}

	return tr
}

func TestTrack_AddClip(t *testing.T) {
	t.Parallel()

	tr := NewTrack("drums")
	if err := tr.AddClip("a", nil); !errors.Is(err, ErrNilClip) {
		t.Errorf("AddClip(nil) error = %v, want %v", err, ErrNilClip)
	}

	if err := tr.AddClip("a", constClip(t, 1, 44100, 1000, 1)); err != nil {
		t.Fatalf("AddClip(a) error = %v", err)
	}

	tests := []struct {
		name string
		c    *clip.Clip
	}{
		{"length", constClip(t, 1, 44100, 999, 1)},
		{"channels", constClip(t, 2, 44100, 1000, 1)},
		{"rate", constClip(t, 1, 48000, 1000, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tr.AddClip("b", tt.c)

			var mismatch *clip.MismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("AddClip() error = %v, want *clip.MismatchError", err)
			}
			if mismatch.Name != "b" {
				t.Errorf("MismatchError.Name = %q, want %q", mismatch.Name, "b")
			}
		})
	}
}

func TestTrack_AddClipReplace(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 100, "b": 200}, 1000)
	tr.SetPendingClip("b")

	if err := tr.AddClip("b", constClip(t, 1, 44100, 1000, 300)); err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}

	if got := tr.Clips(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Clips() = %v, want [a b]", got)
	}

	dst := make([]int16, 10)
	tr.Render(dst, 0)
	if dst[0] != 150 {
		t.Errorf("dst[0] = %d, want 150 from the replaced clip", dst[0])
	}
}

func TestTrack_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		rate     int
		n        int
		wantFade int
	}{
		{"mono 44.1k", 1, 44100, 44100, 220},
		{"stereo 48k", 2, 48000, 96000, 480},
		{"mono 8k", 1, 8000, 8000, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := NewTrack("t")
			if err := tr.AddClip("c", constClip(t, tt.channels, tt.rate, tt.n, 0)); err != nil {
				t.Fatalf("AddClip() error = %v", err)
			}

			if tr.FadeLength() != tt.wantFade {
				t.Errorf("FadeLength() = %d, want %d", tr.FadeLength(), tt.wantFade)
			}
			if tr.Channels() != tt.channels {
				t.Errorf("Channels() = %d, want %d", tr.Channels(), tt.channels)
			}
			if tr.SampleRate() != tt.rate {
				t.Errorf("SampleRate() = %d, want %d", tr.SampleRate(), tt.rate)
			}
			if tr.SampleCount() != tt.n {
				t.Errorf("SampleCount() = %d, want %d", tr.SampleCount(), tt.n)
			}
		})
	}
}

func TestTrack_SetPendingClip(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 100}, 1000)

	if !tr.SetPendingClip("a") {
		t.Error("SetPendingClip(a) = false, want true")
	}
	if name, ok := tr.Pending(); !ok || name != "a" {
		t.Errorf("Pending() = %q, %v, want a, true", name, ok)
	}

	if tr.SetPendingClip("missing") {
		t.Error("SetPendingClip(missing) = true, want false")
	}
	if _, ok := tr.Pending(); ok {
		t.Error("Pending() still set after unknown clip")
	}
}

func TestTrack_RenderBootstrap(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 1000}, 44100)

	dst := make([]int16, 100)
	if tr.Render(dst, 0) {
		t.Fatal("Render() = true with no clip selected")
	}
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("dst[%d] = %d, want untouched 0", i, s)
		}
	}

	tr.SetPendingClip("a")
	if !tr.Render(dst, 0) {
		t.Fatal("Render() = false after SetPendingClip")
	}
	if name, ok := tr.Active(); !ok || name != "a" {
		t.Errorf("Active() = %q, %v, want a, true", name, ok)
	}
	for i, s := range dst {
		if s != 500 {
			t.Fatalf("dst[%d] = %d, want 500", i, s)
		}
	}
}

func TestTrack_RenderAccumulates(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 30000}, 1000)
	tr.SetPendingClip("a")

	dst := slices.Repeat([]int16{20000}, 10)
	tr.Render(dst, 0)

	for i, s := range dst {
		if s != 32767 {
			t.Fatalf("dst[%d] = %d, want saturated 32767", i, s)
		}
	}
}

func TestTrack_RoundTrip(t *testing.T) {
	t.Parallel()

	const n = 999
	c := rampClip(t, n+1)

	tr := NewTrack("ramp")
	if err := tr.AddClip("ramp", c); err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}
	tr.SetPendingClip("ramp")

	// windows that stop one sample short of the end never fade
	var out []int16
	for pos := 0; pos < n; pos += n / 3 {
		dst := make([]int16, n/3)
		tr.Render(dst, pos)
		out = append(out, dst...)
	}

	for i, s := range out {
		want := int16(float32(c.At(i)) * Gain)
		if s != want {
			t.Fatalf("out[%d] = %d, want %d", i, s, want)
		}
	}
}

func TestTrack_Crossfade(t *testing.T) {
	t.Parallel()

	const length = 44100
	const window = 689

	tests := []struct {
		name       string
		pending    string
		wantFirst  int16
		wantLast   int16
		wantActive string
	}{
		{"to other clip", "b", 507, 2000, "b"},
		{"to silence", "", 498, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := newTestTrack(t, map[string]int16{"a": 1000, "b": 2000}, length)
			tr.SetPendingClip("a")
			tr.Render(make([]int16, window), 0)
			tr.SetPendingClip(tt.pending)

			dst := make([]int16, window)
			tr.Render(dst, length-window)

			fade := tr.FadeLength()
			plain := window - fade

			for i := range plain {
				if dst[i] != 500 {
					t.Fatalf("dst[%d] = %d, want 500 before the fade", i, dst[i])
				}
			}

			if dst[plain] != tt.wantFirst {
				t.Errorf("first fade sample = %d, want %d", dst[plain], tt.wantFirst)
			}
			if dst[window-1] != tt.wantLast {
				t.Errorf("last fade sample = %d, want %d", dst[window-1], tt.wantLast)
			}

			for i := plain + 1; i < window; i++ {
				if tt.wantLast > 500 && dst[i] < dst[i-1] {
					t.Fatalf("fade not monotonic at %d: %d < %d", i, dst[i], dst[i-1])
				}
				if tt.wantLast < 500 && dst[i] > dst[i-1] {
					t.Fatalf("fade not monotonic at %d: %d > %d", i, dst[i], dst[i-1])
				}
			}

			active, _ := tr.Active()
			if active != tt.wantActive {
				t.Errorf("Active() = %q, want %q", active, tt.wantActive)
			}
		})
	}
}

func TestTrack_CrossfadeShortWindow(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 1000}, 1000)
	tr.SetPendingClip("a")
	tr.Render(make([]int16, 1), 0)
	tr.SetPendingClip("")

	// fade is longer than the window, so the whole window fades to zero
	dst := make([]int16, 10)
	tr.Render(dst, 990)

	if dst[9] != 0 {
		t.Errorf("dst[9] = %d, want 0", dst[9])
	}
	if dst[0] <= dst[9] {
		t.Errorf("dst[0] = %d, want above the faded tail", dst[0])
	}
}

func TestTrack_SilenceStaysSilent(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 1000}, 1000)
	tr.SetPendingClip("a")
	tr.Render(make([]int16, 500), 0)
	tr.SetPendingClip(SilenceClip)
	tr.Render(make([]int16, 500), 500)

	if _, ok := tr.Active(); ok {
		t.Fatal("Active() still set after fading to silence")
	}

	dst := make([]int16, 500)
	if tr.Render(dst, 0) {
		t.Error("Render() = true for a silent track")
	}
}

func TestTrack_SameClipAgain(t *testing.T) {
	t.Parallel()

	tr := newTestTrack(t, map[string]int16{"a": 1000}, 1000)
	tr.SetPendingClip("a")

	for pos := 0; pos < 5000; pos += 250 {
		tr.Render(make([]int16, 250), pos)
		tr.SetPendingClip("a")
	}

	if name, ok := tr.Active(); !ok || name != "a" {
		t.Errorf("Active() = %q, %v, want a, true", name, ok)
	}
}

func TestTrack_RenderDuringAddClip(t *testing.T) {
	t.Parallel()

	const n = 64
	tr := newTestTrack(t, map[string]int16{"a": 1}, n)
	tr.SetPendingClip("a")

	clips := make([]*clip.Clip, 400)
	for i := range clips {
		clips[i] = constClip(t, 1, 44100, n, int16(i))
	}

	done := make(chan error)
	go func() {
		defer close(done)
		for i, c := range clips {
			name := fmt.Sprintf("c%d", i)
			if err := tr.AddClip(name, c); err != nil {
				done <- err
				return
			}
			tr.SetPendingClip(name)
		}
	}()

	dst := make([]int16, n)
	for {
		select {
		case err, ok := <-done:
			if ok {
				t.Fatalf("AddClip() error = %v", err)
			}
			if got, _ := tr.Pending(); got != "c399" {
				t.Errorf("Pending() = %q, want c399", got)
			}
			return
		default:
		}

		clear(dst)
		tr.Render(dst, 0)
	}
}

func TestTrack_RenderZeroAlloc(t *testing.T) {
	tr := newTestTrack(t, map[string]int16{"a": 1000, "b": 2000}, 44100)
	tr.SetPendingClip("a")
	dst := make([]int16, 689)

	pos := 0
	allocs := testing.AllocsPerRun(100, func() {
		tr.SetPendingClip("b")
		tr.Render(dst, pos)
		pos = (pos + len(dst)) % 44100
	})

	if allocs != 0 {
		t.Errorf("Render() allocated %.0f times per run, want 0", allocs)
	}
}

func BenchmarkTrack_Render(b *testing.B) {
	tr := newTestTrack(b, map[string]int16{"a": 1000}, 44100)
	tr.SetPendingClip("a")
	dst := make([]int16, 689)

	pos := 0
	for b.Loop() {
		tr.Render(dst, pos)
		pos = (pos + len(dst)) % 44100
	}
}
