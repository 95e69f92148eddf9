// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"maps"
	"sync"
)

// SilenceClip is selected on every track at a wrap before the staged requests
// are applied, so tracks nobody asked for fade out. A track that really owns
// a clip with this name keeps playing it.
const SilenceClip = "silence"

// request asks for clip to become the pending clip of track.
type request struct {
	track string
	clip  string
}

// pendingUpdates is the hand-off between the control goroutine and the render
// goroutine. Critical sections are map and flag operations only.
type pendingUpdates struct {
	mu         sync.Mutex
	requests   map[string]string
	needsAudio bool
}

func newPendingUpdates() *pendingUpdates {
	return &pendingUpdates{
		requests:   make(map[string]string),
		needsAudio: true,
	}
}

// stage records reqs in one critical section, overwriting earlier unconsumed
// requests for the same track.
func (p *pendingUpdates) stage(reqs []request) {
	if len(reqs) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range reqs {
		p.requests[r.track] = r.clip
	}
	p.needsAudio = false
}

func (p *pendingUpdates) NeedsAudio() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.needsAudio
}

// post silences every track, applies the staged requests, clears them and
// flags that the next cycle needs requests.
func (p *pendingUpdates) post(set *trackSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range set.ordered {
		t.SetPendingClip(SilenceClip)
	}

	for track, name := range p.requests {
		if t, ok := set.byName[track]; ok {
			t.SetPendingClip(name)
		}
	}

	clear(p.requests)
	p.needsAudio = true
}

func (p *pendingUpdates) snapshot() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return maps.Clone(p.requests)
}
