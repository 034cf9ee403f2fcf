package domain

import "time"

// Token is a signed identity token handed to a client. It is never persisted.
type Token struct {
	Value     string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
