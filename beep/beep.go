// Package beep plays short audio cues for recording start, stop and
// errors. All playback is fire-and-forget.
package beep

import "math"

var disabled bool

// Disable turns all cues into no-ops. Used in headless test mode.
func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Start cue: short high blip
	startFreq   = 1320.0
	startVolume = 0.45
	startDecay  = 55.0

	// Stop cue: lower, a touch longer
	stopFreq   = 880.0
	stopVolume = 0.45
	stopDecay  = 35.0

	// Error cue: low double blip
	errorFreq   = 330.0
	errorVolume = 0.55
	errorDecay  = 28.0
)

// synth renders a decaying sine tone as mono int16 samples.
func synth(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func synthDouble(freq, blipDur, gapDur, volume, decay float64) []int16 {
	blip := synth(freq, blipDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(blip)*2+len(gap))
	out = append(out, blip...)
	out = append(out, gap...)
	out = append(out, blip...)
	return out
}
