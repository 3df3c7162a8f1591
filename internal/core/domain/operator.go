package domain

import "time"

// Operator is an ops-API account. Operators manage merchants and
// credentials and trigger manual re-notify or cancel.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose
	CreatedAt    time.Time `json:"created_at"`
}
