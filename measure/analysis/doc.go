// Package analysis summarizes rendered grain output: level (peak, RMS),
// discontinuity (largest sample-to-sample jump, the signature of a click)
// and brightness (spectral centroid of the averaged magnitude spectrum).
//
// It is an offline tool for inspecting renders and for tests; nothing here
// runs on the audio path.
package analysis
