package enemy

// Phase is a stage of a boss fight that selects its dialogue.
type Phase string

const (
	PhaseIntro  Phase = "intro"
	PhaseMid    Phase = "mid"
	PhaseLow    Phase = "low"
	PhaseDefeat Phase = "defeat"
)

const (
	lowPhaseRatio = 0.25
	midPhaseRatio = 0.75
)

// PhaseFor maps an HP ratio to the dialogue phase of a living enemy.
func PhaseFor(ratio float64) Phase {
	switch {
	case ratio <= 0:
		return PhaseDefeat
	case ratio < lowPhaseRatio:
		return PhaseLow
	case ratio < midPhaseRatio:
		return PhaseMid
	default:
		return PhaseIntro
	}
}
