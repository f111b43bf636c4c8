package domain

import "time"

// Credential is a sign-in secret held by the identity provider. The core only
// ever sees its ID.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// GoogleIdentity is the verified subset of a Google ID token used for sign-in.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}
