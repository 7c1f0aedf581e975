package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID                   – primary key identifier of the user.
//  Email                – unique lowercase email address.
//  PasswordHash         – bcrypt hashed password. Never serialized or logged.
//  Name                 – optional display name.
//  AvatarURL            – public path of the uploaded avatar ("" when unset).
//  EmergencyContact     – free-form emergency contact text.
//  PrimaryDoctorContact – free-form primary doctor contact text.
//  CreatedAt            – timestamp of creation.
type User struct {
	ID                   uint64    // users.id
	Email                string    // users.email
	PasswordHash         string    // users.password_hash
	Name                 string    // users.name
	AvatarURL            string    // users.avatar_url
	EmergencyContact     string    // users.emergency_contact
	PrimaryDoctorContact string    // users.primary_doctor_contact
	CreatedAt            time.Time // users.created_at
}
