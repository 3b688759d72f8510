package model

import "time"

// LoginAttempt is an audit row recorded on every authentication attempt.
// Lockout state is never stored directly: it is recomputed per check from
// the failed rows inside the trailing lockout window.
type LoginAttempt struct {
	Username    string    `json:"username"`
	IPAddress   string    `json:"ip_address"`
	Success     bool      `json:"success"`
	AttemptTime time.Time `json:"attempt_time"`
}
