// SPDX-License-Identifier: EPL-2.0

// Package script runs Lua driver scripts that steer a mixer.
//
// A driver defines two global functions. initialize(launcher) runs once and
// usually sets up tracks, stages the first clips and starts playback.
// update(launcher) is polled by Agent.Run; returning false ends the run.
//
//	local states = { {"bass.wav", "drums2.wav", "star.wav"}, ... }
//
//	function initialize(l)
//		l:initialize({ bass = {"bass.wav"}, drums = {"drums2.wav"} })
//		l:update_pending_clips(states[1])
//		l:play()
//	end
//
//	function update(l)
//		if l:needs_audio() then
//			l:update_pending_clips(next_state())
//		end
//	end
//
// Launcher methods mirror mixer.Mixer: initialize, add_track, get_track,
// update_pending_clips, needs_audio, play, pause, stop, set_volume, volume,
// set_loop, loop, sample_rate and channels. get_track returns a track object
// with has_clip, set_pending, active and pending, or nil. print goes to the
// agent's logger.
package script
