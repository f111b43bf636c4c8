package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Principal ID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // Principal ID reference
}

// NewAuditFields stamps creation and update fields with the same actor and time.
func NewAuditFields(actorID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
}

// Touch records an update by actorID.
func (a *AuditFields) Touch(actorID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = actorID
}

// SystemState is the bootstrap sentinel. Exactly one row/record exists once the
// first administrator has been created.
type SystemState struct {
	Initialized   bool      `json:"initialized"`
	InitializedAt time.Time `json:"initializedAt"`
	InitializedBy string    `json:"initializedBy"`
}
