package analytics

// Priority ranks a critical alert.
type Priority int

const (
	// PriorityMedium is a broken link on a critical page that is neither
	// a server error nor on the homepage or pricing page.
	PriorityMedium Priority = iota

	// PriorityHigh is a broken link on the homepage or the pricing page.
	PriorityHigh

	// PriorityCritical is a server error (status 500 or above).
	PriorityCritical
)

// String returns a human-readable representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Impact labels of a critical alert, by the page the broken link was found on.
const (
	ImpactHomepage    = "Homepage"
	ImpactPricing     = "Pricing Page"
	ImpactSignup      = "Signup Flow"
	ImpactLogin       = "Login Flow"
	ImpactServerError = "Server Error"
	ImpactGeneral     = "General"
)

// impactByKeyword maps a source-page keyword to its impact label, checked
// in this order.
var impactByKeyword = []struct {
	keyword string
	impact  string
}{
	{"homepage", ImpactHomepage},
	{"pricing", ImpactPricing},
	{"signup", ImpactSignup},
	{"login", ImpactLogin},
}
