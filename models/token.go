// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Token is a room access token issued by the authority.
//
// SignedString holds the compact JWT as received in the Authorization
// header. ExpiresAt is read from its "exp" claim without verification; the
// client never holds the signing key and only needs the expiry to refresh
// ahead of time.
type Token struct {
	SignedString string
	ExpiresAt    time.Time
	Subject      string
}

// String returns the compact JWT.
func (t Token) String() string {
	return t.SignedString
}

// IsZero reports whether no token is held.
func (t Token) IsZero() bool {
	return t.SignedString == ""
}

// ExpiresWithin reports whether the token is missing, expired, or expires
// before now+buffer. A token without an exp claim never expires.
func (t Token) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	if t.IsZero() {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(buffer).Before(t.ExpiresAt)
}
