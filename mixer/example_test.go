// SPDX-License-Identifier: EPL-2.0

package mixer_test

import (
	"context"
	"fmt"
	"slices"

	"github.com/ik5/audloop/clip"
	"github.com/ik5/audloop/mixer"
)

func Example() {
	loader := clip.NewMemoryLoader()
	for name, v := range map[string]int16{"drums": 1000, "bass": 400} {
		c, _ := clip.New(1, 44100, slices.Repeat([]int16{v}, 44100))
		loader.Put(name, c)
	}

	m := mixer.New(loader)
	err := m.Initialize(context.Background(), map[string][]string{
		"rhythm": {"drums"},
		"low":    {"bass"},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	m.UpdatePendingClips("drums", "bass")
	_ = m.Play()

	buf, _ := m.OnGetData()
	fmt.Println(m.Tracks(), m.ChunkSize(), buf[0])
	fmt.Println(m.NeedsAudio())
	// Output:
	// [low rhythm] 689 700
	// true
}

func ExampleTrack_SetPendingClip() {
	a, _ := clip.New(1, 8000, slices.Repeat([]int16{100}, 800))

	tr := mixer.NewTrack("pad")
	_ = tr.AddClip("a", a)

	fmt.Println(tr.SetPendingClip("a"), tr.SetPendingClip("b"))
	fmt.Println(tr.FadeLength())
	// Output:
	// true false
	// 40
}
