package types

import "fmt"

// Urgency is the bucket a reaction emoji maps a new todo into. It drives the
// computed deadline.
type Urgency string

const (
	UrgencyToday    Urgency = "today"
	UrgencyTomorrow Urgency = "tomorrow"
	UrgencyLater    Urgency = "later"
)

// AllUrgencies returns all urgency buckets in priority order
func AllUrgencies() []Urgency {
	return []Urgency{
		UrgencyToday,
		UrgencyTomorrow,
		UrgencyLater,
	}
}

// IsValid checks if the urgency is a known bucket
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyToday,
		UrgencyTomorrow,
		UrgencyLater:
		return true
	default:
		return false
	}
}

func (u Urgency) String() string {
	return string(u)
}

// ParseUrgency parses a string into an Urgency
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid urgency: %s", s)
	}
	return u, nil
}
