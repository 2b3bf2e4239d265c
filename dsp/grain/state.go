package grain

// State is the lifecycle stage of a grain.
type State uint8

const (
	// Active grains play at full level.
	Active State = iota
	// Fading grains have been marked for removal and ramp toward silence.
	Fading
	// Retired grains are silent and are removed by the next engine sweep.
	Retired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Fading:
		return "fading"
	case Retired:
		return "retired"
	default:
		return "unknown"
	}
}
