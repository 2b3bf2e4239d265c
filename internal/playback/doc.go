// Package playback streams a granular cloud to the system audio device.
//
// Stream renders interleaved float32 little-endian stereo frames on demand
// and is safe to control from another goroutine while the device pulls
// audio from it. Build with the headless tag to replace the device backend
// with a silent stub.
package playback
