// Package grain implements a real-time granular playback engine.
//
// A Grain is one playback voice reading a looped window of a shared Source.
// Its cursor advances by a caller-supplied step every tick and wraps at the
// grain length; each wrap triggers the grain's own declick smoother so loop
// points do not click. Grains are never cut off: MarkForRemoval starts a
// linear fade and the grain retires once the fade reaches silence.
//
// An Engine owns an ordered set of grains (oldest first), mixes them once per
// tick with Process (or per block with ProcessBlock) and removes retired
// grains in a single compacting pass after each mix. Voice budgets are
// enforced by callers through MarkOldestForRemoval, which fades the oldest
// grains instead of stealing them.
//
// The per-tick path does no allocation and no validation; inputs are checked
// once by NewGrain and Engine.Add. An Engine is not safe for concurrent use.
package grain
