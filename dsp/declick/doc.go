// Package declick provides per-voice stereo crossfade smoothers that hide
// discontinuities in a read position (loop wraps, jumps, forced removals).
//
// A Stereo smoother passes its input through unchanged until Trigger is
// called. After a trigger it blends from the last value it produced toward
// the live input over a linear ramp whose per-call increment is supplied to
// Process, so a hard jump in the underlying signal becomes a short crossfade.
//
// Smoothers are allocation-free and not thread-safe.
package declick
