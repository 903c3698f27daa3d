// Package models provides public SDK types for the westmarch client.
package models

import internal "github.com/westmarch-io/westmarch/internal/models"

// Identity is the user a session belongs to, as read from its access
// credential. See internal/models.Identity for full documentation.
type Identity = internal.Identity

// TokenPair is the access and refresh credential pair issued at login.
type TokenPair = internal.TokenPair
