// Package queue defines message payloads exchanged over the message broker
// plus the publisher and consumer for the session audit trail.
package queue

// Session audit event names published to the broker.
const (
	EventSessionLogin     = "session.login"
	EventSessionLogout    = "session.logout"
	EventSessionLogoutAll = "session.logout_all"
	EventSessionEvicted   = "session.evicted"
)

// SessionEvent is published whenever a session is opened, closed or evicted.
// It carries the device/IP metadata recorded at login so downstream auditing
// does not need to query the primary database.
type SessionEvent struct {
	Event      string `json:"event"`
	UserID     uint64 `json:"user_id,omitempty"`
	Username   string `json:"username,omitempty"`
	DeviceInfo string `json:"device_info,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
