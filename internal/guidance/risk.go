package guidance

import "strings"

// RiskLevel is the closed severity enum the app acts on. Raw backend
// vocabulary exists only at the decode boundary; everything downstream
// matches on these three values.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskSupport
	RiskCrisis
)

// ParseRiskLevel maps a free-text severity token onto the enum. Unknown
// vocabulary is treated as no risk.
func ParseRiskLevel(token string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "high", "crisis":
		return RiskCrisis
	case "mild", "support":
		return RiskSupport
	default:
		return RiskNone
	}
}

// Label is the inverse mapping used on the wire and in storage. The contract
// is round-trip consistency: ParseRiskLevel(l.Label()) == l for every level.
func (l RiskLevel) Label() string {
	switch l {
	case RiskCrisis:
		return "high"
	case RiskSupport:
		return "mild"
	default:
		return "none"
	}
}

// decodeRisk picks the severity token out of a turn mapping: risk_level wins
// over risk; absence means none.
func decodeRisk(m map[string]any) RiskLevel {
	if s, ok := stringValue(m["risk_level"]); ok {
		return ParseRiskLevel(s)
	}
	if s, ok := stringValue(m["risk"]); ok {
		return ParseRiskLevel(s)
	}
	return RiskNone
}
