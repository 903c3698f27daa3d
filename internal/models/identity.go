package models

import (
	"fmt"
	"time"
)

// Identity is the user described by an access credential. It is never
// stored on its own; it is decoded again whenever a credential is set
// or restored.
type Identity struct {
	UserID   int64     `json:"user_id" yaml:"user_id"`
	Username string    `json:"username" yaml:"username"`
	IsStaff  bool      `json:"is_staff" yaml:"is_staff"`
	Expiry   time.Time `json:"expiry,omitempty" yaml:"expiry,omitempty"` // zero when the credential has no exp
}

// IsElevated reports whether the identity carries staff privileges.
func (i *Identity) IsElevated() bool {
	return i != nil && i.IsStaff
}

func (i *Identity) HasExpiry() bool {
	return i != nil && !i.Expiry.IsZero()
}

func (i *Identity) IsExpired() bool {
	return i.HasExpiry() && time.Now().After(i.Expiry)
}

func (i *Identity) String() string {
	if i == nil {
		return "anonymous"
	}
	if len(i.Username) > 0 {
		return fmt.Sprintf("%s (#%d)", i.Username, i.UserID)
	}
	return fmt.Sprintf("#%d", i.UserID)
}
