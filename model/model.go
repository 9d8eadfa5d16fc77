// Package model defines the domain-entity family used by typed lists.
//
// An entity is anything with a stable identifier. A Repository resolves
// identifiers back into entities; the Registry maps symbolic names to
// repositories so a typed list can be declared by name and resolved once
// at construction.
package model

import (
	"context"

	"github.com/google/uuid"
)

// Entity is a domain object with a stable, unique, round-trippable id.
type Entity interface {
	EntityID() string
}

// Repository resolves identifiers into entities.
// A missing entity is (zero, false, nil), not an error.
type Repository[T Entity] interface {
	GetByID(ctx context.Context, id string) (T, bool, error)
}

// BatchRepository resolves many identifiers at once. Missing ids are absent
// from the returned map.
type BatchRepository[T Entity] interface {
	Repository[T]
	GetManyByID(ctx context.Context, ids []string) (map[string]T, error)
}

// NewID returns a random identifier suitable for new entities.
func NewID() string { return uuid.NewString() }
