package drift

import "fmt"

// Level is the drift severity. Ordering matters: higher levels are more
// severe.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelAlert
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelAlert:
		return "ALERT"
	default:
		return "OK"
	}
}

// Size multipliers applied by the downstream order sizer per level.
const (
	multiplierOK    = 1.0
	multiplierWarn  = 0.5
	multiplierAlert = 0.25
)

// Policy holds the warn/alert thresholds for the three model-health
// statistics.
type Policy struct {
	PSIWarn  float64
	PSIAlert float64
	KSWarn   float64
	KSAlert  float64
	ECEWarn  float64
	ECEAlert float64
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		PSIWarn:  0.10,
		PSIAlert: 0.25,
		KSWarn:   0.15,
		KSAlert:  0.25,
		ECEWarn:  0.05,
		ECEAlert: 0.10,
	}
}

// Decision is the safe-mode output: a severity level, the position-size
// multiplier the order sizer must apply, human-readable notes, and the raw
// statistics the decision was based on.
type Decision struct {
	Level          Level
	SizeMultiplier float64
	Notes          []string
	PSI            float64
	KS             float64
	ECE            float64
}

// Evaluate is a pure function of the three statistics and the policy. When no
// calibrator or live outcomes are available the caller passes ece = 0, which
// cannot trigger WARN or ALERT by itself.
func Evaluate(psi, ks, ece float64, policy Policy) Decision {
	d := Decision{PSI: psi, KS: ks, ECE: ece}

	check := func(name string, value, warn, alert float64) Level {
		switch {
		case value >= alert:
			d.Notes = append(d.Notes, fmt.Sprintf("%s %.4f >= alert threshold %.4f", name, value, alert))
			return LevelAlert
		case value >= warn:
			d.Notes = append(d.Notes, fmt.Sprintf("%s %.4f >= warn threshold %.4f", name, value, warn))
			return LevelWarn
		}
		return LevelOK
	}

	d.Level = maxLevel(
		check("psi", psi, policy.PSIWarn, policy.PSIAlert),
		check("ks", ks, policy.KSWarn, policy.KSAlert),
		check("ece", ece, policy.ECEWarn, policy.ECEAlert),
	)

	switch d.Level {
	case LevelAlert:
		d.SizeMultiplier = multiplierAlert
	case LevelWarn:
		d.SizeMultiplier = multiplierWarn
	default:
		d.SizeMultiplier = multiplierOK
		d.Notes = append(d.Notes, "all statistics within thresholds")
	}
	return d
}

func maxLevel(levels ...Level) Level {
	max := LevelOK
	for _, l := range levels {
		if l > max {
			max = l
		}
	}
	return max
}
