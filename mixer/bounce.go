// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"io"

	"github.com/ik5/audloop/formats/wav"
)

// Bounce renders cycles global loop cycles through OnGetData and writes them
// to w as a 16-bit WAV stream. onCycle, when set, runs before each cycle with
// its zero based index so the caller can stage requests the way a control
// loop would. Bounce takes the render goroutine's role and must not run
// alongside a Reader.
func (m *Mixer) Bounce(w io.Writer, cycles int, onCycle func(cycle int)) error {
	if cycles < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCycles, cycles)
	}
	chunk := m.ChunkSize()
	if chunk == 0 {
		return ErrNotInitialized
	}

	set := m.tracks.Load()
	out := make([]int16, 0, cycles*(set.maxLen+chunk))

	for c := range cycles {
		if onCycle != nil {
			onCycle(c)
		}

		start := m.cycles
		for m.cycles == start {
			buf, _ := m.OnGetData()
			out = append(out, buf...)
		}

		m.log.Debug().Int("cycle", c).Int("samples", len(out)).Msg("cycle bounced")
	}

	if err := wav.WriteWAV16(w, set.format.SampleRate, set.format.Channels, out); err != nil {
		return fmt.Errorf("writing bounce: %w", err)
	}

	m.log.Info().Int("cycles", cycles).Int("samples", len(out)).Msg("bounce written")

	return nil
}
