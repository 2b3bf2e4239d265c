// Package signal generates deterministic source material for granular
// playback: tones, noise and sweeps, as raw slices or ready-made stereo
// samples.
package signal
