// Package granular drives a grain.Engine from musical parameters.
//
// A Cloud schedules grains at a fixed density, places each one at a
// normalized position in the source with optional random spray, plays them
// at a pitch ratio and keeps polyphony inside a voice budget by fading the
// oldest grains (grain.Engine.MarkOldestForRemoval) instead of cutting them.
//
// Output is deterministic for a given seed and parameter sequence. A Cloud
// is not thread-safe; callers that change parameters from another goroutine
// must serialize access with the audio callback.
package granular
