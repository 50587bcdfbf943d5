package notify

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPriority = errors.New("notify: invalid priority")

// Priority orders events for threshold comparison only.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority accepts the level names case-insensitively.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	default:
		return PriorityLow, fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
