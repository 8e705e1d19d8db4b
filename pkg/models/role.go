// Package models contains the wire-level data types shared across the
// agent runtime, short-term memory, and swarm layers.
package models

import "fmt"

// RoleKind distinguishes the two message-author cases the system knows
// about: a human/supplier-provided prompt, or an agent-produced reply.
type RoleKind string

const (
	RoleKindUser      RoleKind = "user"
	RoleKindAssistant RoleKind = "assistant"
)

// Role is a tagged variant carrying a display name, mirroring the
// original `Role::User(name) | Role::Assistant(name)` enum.
type Role struct {
	Kind RoleKind
	Name string
}

// User builds a User role for the given supplier name.
func User(name string) Role {
	return Role{Kind: RoleKindUser, Name: name}
}

// Assistant builds an Assistant role for the given agent name.
func Assistant(name string) Role {
	return Role{Kind: RoleKindAssistant, Name: name}
}

// String renders "{name}({kind})", e.g. "alice(user)".
func (r Role) String() string {
	return fmt.Sprintf("%s(%s)", r.Name, r.Kind)
}
