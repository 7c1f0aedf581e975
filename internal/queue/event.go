// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// SupportMessageEvent is published when a user submits a support request.
// It carries enough for the support tooling to triage without querying the
// primary database.
type SupportMessageEvent struct {
	MessageID  uint64 `json:"message_id"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	ReceivedAt string `json:"received_at"`
}
