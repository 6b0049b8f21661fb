package portal

import (
	"strings"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Status is a project's canonical portal status.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusPending   Status = "PENDING"
	StatusOther     Status = "OTHER"
)

// NormalizeStatus derives the canonical status. The ERP status code wins over
// the project's own status string.
func NormalizeStatus(p project.Project) Status {
	switch strings.ToUpper(strings.TrimSpace(p.SpectrumStatusCode)) {
	case "A":
		return StatusActive
	case "C":
		return StatusCompleted
	case "I":
		return StatusPending
	}
	switch s := Status(strings.ToUpper(strings.TrimSpace(p.Status))); s {
	case StatusActive, StatusCompleted, StatusPending:
		return s
	}
	return StatusOther
}

// StatusLabel is the text shown for a project's status; OTHER keeps the raw value.
func StatusLabel(p project.Project) string {
	status := NormalizeStatus(p)
	if status == StatusOther && strings.TrimSpace(p.Status) != "" {
		return p.Status
	}
	return string(status)
}
