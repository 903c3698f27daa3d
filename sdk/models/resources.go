package models

import internal "github.com/westmarch-io/westmarch/internal/models"

type Character = internal.Character

type DnDClass = internal.DnDClass

type RegisterRequest = internal.RegisterRequest

// Page is a paginated API response.
type Page[T any] = internal.Page[T]
