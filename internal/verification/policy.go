package verification

// Classification thresholds. These are fixed policy constants: operational
// tuning changes these values, not the policy code around them.
const (
	// ThresholdVerified is the minimum confidence for VERIFIED, which
	// additionally requires the oracle's validation flag.
	ThresholdVerified = 0.95
	// ThresholdFlagged is the minimum confidence for FLAGGED; the validation
	// flag is not consulted at this tier.
	ThresholdFlagged = 0.70
)

// Reasons attached to each disposition.
const (
	ReasonVerified = "High confidence and validation passed"
	ReasonFlagged  = "Medium confidence or partial validation"
	ReasonRejected = "Low confidence"
)

// Classify maps an extraction signal to a disposition. It is a pure,
// deterministic function; rules are checked in strict order and the first
// match wins.
func Classify(confidence float64, validationPassed bool) (Status, string) {
	if confidence >= ThresholdVerified && validationPassed {
		return StatusVerified, ReasonVerified
	}
	if confidence >= ThresholdFlagged {
		return StatusFlagged, ReasonFlagged
	}
	return StatusRejected, ReasonRejected
}
