// Package sample holds immutable in-memory stereo sample buffers that grains
// read from.
//
// A Sample is shared by every grain that references it and must not be
// mutated while any grain is playing it. Constructors copy their input so
// the caller keeps ownership of the slices it passed in.
//
// Decoding audio files is not part of this package; callers that already
// hold PCM data (for example a go-audio IntBuffer) convert it with the
// From* helpers.
package sample
