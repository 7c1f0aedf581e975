package model

import "time"

// Medicine mirrors a row in the `medicines` table. Every record is owned
// by exactly one user; ownership is enforced at the repository layer by
// always scoping queries to the resolved user id.
type Medicine struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"-"`
	Name      string     `json:"name"`
	Dose      string     `json:"dose"`
	Frequency string     `json:"frequency"`
	Notes     string     `json:"notes"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Vaccine mirrors a row in the `vaccines` table.
type Vaccine struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Provider  string    `json:"provider"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Appointment mirrors a row in the `appointments` table.
type Appointment struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Doctor    string    `json:"doctor"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// SupportMessage mirrors a row in the `support_messages` table. Messages
// are kept for auditing and additionally published to the message broker
// so the support team can react without polling the database.
type SupportMessage struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
