package domain

// Verdict is the outcome of an external verification.
//
// Unknown means the check could not run (dependency unavailable) and is
// distinct from Rejected, which means the check ran and failed.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictConfirmed
	VerdictRejected
)

func (v Verdict) String() string {
	switch v {
	case VerdictConfirmed:
		return "confirmed"
	case VerdictRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Passes reports whether v lets a submission through. Unknown fails open.
func (v Verdict) Passes() bool {
	return v != VerdictRejected
}
