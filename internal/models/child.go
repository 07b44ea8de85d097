package models

import "time"

// Child represents a tracked child profile
type Child struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BirthDate     time.Time `json:"birthDate"`
	GuardianEmail string    `json:"guardianEmail,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
