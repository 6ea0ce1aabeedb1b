// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package workflow

import (
	"slices"

	"shopadmin/internal/models"
)

// Resolver maps a role to the transitions and action permissions it is
// granted. The engine is polymorphic over this capability: the transition
// graph is deployment configuration, never code.
type Resolver interface {
	// HasPermission reports whether the permission set includes key.
	HasPermission(perms []string, key string) bool

	// AllowedTransitions returns the legally reachable next statuses for a
	// role from the given current status, each annotated with whether a
	// tracking number is mandatory on that edge.
	AllowedTransitions(roleKey string, fromStatusID int64) ([]models.Transition, error)
}

// TransitionSource is the read capability behind the store-backed
// resolver. Satisfied by store.WorkflowStore.
type TransitionSource interface {
	TransitionsFor(roleKey string, fromStatusID int64) ([]models.Transition, error)
}

// StoreResolver resolves transitions from the role_transitions table and
// checks permissions against the session's permission set.
type StoreResolver struct {
	src TransitionSource
}

// NewStoreResolver returns a Resolver backed by src.
func NewStoreResolver(src TransitionSource) *StoreResolver {
	return &StoreResolver{src: src}
}

// HasPermission reports whether key is present in perms.
func (r *StoreResolver) HasPermission(perms []string, key string) bool {
	return slices.Contains(perms, key)
}

// AllowedTransitions returns the role's outgoing edges from fromStatusID.
func (r *StoreResolver) AllowedTransitions(roleKey string, fromStatusID int64) ([]models.Transition, error) {
	return r.src.TransitionsFor(roleKey, fromStatusID)
}
