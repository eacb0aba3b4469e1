package model

import "time"

// Application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application is a partner program application reviewed from the admin view.
type Application struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Message   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidApplicationStatus reports whether s is a known status.
func ValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}
