package alert

import (
	"time"

	"github.com/google/uuid"
)

// Severities, lowest to highest.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

func ValidSeverity(s string) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Alert is an operator-facing notification raised by the system.
type Alert struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

// Filters narrows List results. Resolved is a tri-state: nil matches both.
type Filters struct {
	Type     string
	Severity string
	Resolved *bool
}
