package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClassificationPlatformAdmin marks the reserved internal organization that
// hosts platform operators. It never participates in matching scans.
const ClassificationPlatformAdmin = "platform-admin"

// Organization represents a tenant whose address book is scanned for matches.
type Organization struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Classification string    `json:"classification"`
	CreatedAt      time.Time `json:"created_at"`
}
