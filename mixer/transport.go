// SPDX-License-Identifier: EPL-2.0

package mixer

// Transport is the output device the mixer drives. playback.Device and
// playback.Pump implement it.
type Transport interface {
	Play()
	Pause()
	Stop()
	SetVolume(v float64)
	Volume() float64
}

// Attach sets the transport used by Play, Pause, Stop and the volume
// controls. Passing nil detaches it.
func (m *Mixer) Attach(t Transport) {
	m.transportMu.Lock()
	defer m.transportMu.Unlock()

	m.transport = t
	if t != nil {
		m.log.Debug().Msg("transport attached")
	}
}

func (m *Mixer) withTransport(fn func(Transport)) {
	m.transportMu.Lock()
	defer m.transportMu.Unlock()

	if m.transport != nil {
		fn(m.transport)
	}
}

// Play flushes the staged requests into the tracks' pending clips and starts
// the transport. Tracks begin with their pending clip on the first render.
func (m *Mixer) Play() error {
	m.mu.Lock()
	initialized := m.initialized
	m.mu.Unlock()

	if !initialized {
		return ErrNotInitialized
	}

	m.pending.post(m.tracks.Load())
	m.withTransport(Transport.Play)
	m.log.Info().Msg("playback started")

	return nil
}

func (m *Mixer) Pause() {
	m.withTransport(Transport.Pause)
	m.log.Info().Msg("playback paused")
}

func (m *Mixer) Stop() {
	m.withTransport(Transport.Stop)
	m.log.Info().Msg("playback stopped")
}

// SetVolume forwards v, clamped to [0, 1], to the transport.
func (m *Mixer) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	m.withTransport(func(t Transport) { t.SetVolume(v) })
}

// Volume returns the transport volume, 1 when no transport is attached.
func (m *Mixer) Volume() float64 {
	v := 1.0
	m.withTransport(func(t Transport) { v = t.Volume() })

	return v
}

// SetLoop controls whether streams from NewReader keep looping. When off,
// a reader ends with io.EOF at the next global loop wrap.
func (m *Mixer) SetLoop(on bool) { m.loop.Store(on) }

func (m *Mixer) Loop() bool { return m.loop.Load() }
