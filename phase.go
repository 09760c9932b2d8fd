// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import "fmt"

// PhaseKind identifies a stage of the simulation lifecycle.
type PhaseKind int

const (
	// PhaseLoading waits for the Init program and the binding sets.
	PhaseLoading PhaseKind = iota

	// PhaseInit seeds the surfaces and waits for the Update program.
	PhaseInit

	// PhaseUpdate steps the automaton, ping-ponging between the surfaces.
	PhaseUpdate
)

// String returns the string representation of PhaseKind.
func (k PhaseKind) String() string {
	switch k {
	case PhaseLoading:
		return "Loading"
	case PhaseInit:
		return "Init"
	case PhaseUpdate:
		return "Update"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Phase is the simulation lifecycle state. The buffer index is carried
// only by Update phases and is always 0 or 1.
//
// State Machine:
//
//	Loading -> Init -> Update(1) <-> Update(0)
type Phase struct {
	kind   PhaseKind
	buffer int
}

// LoadingPhase returns the initial phase.
func LoadingPhase() Phase { return Phase{kind: PhaseLoading} }

// InitPhase returns the Init phase.
func InitPhase() Phase { return Phase{kind: PhaseInit} }

// UpdatePhase returns Update with the given buffer index, reduced to 0 or 1.
func UpdatePhase(index int) Phase { return Phase{kind: PhaseUpdate, buffer: index & 1} }

// Kind returns the lifecycle stage.
func (p Phase) Kind() PhaseKind { return p.kind }

// BufferIndex returns the binding set index used by an Update phase.
// It returns 0 for other phases.
func (p Phase) BufferIndex() int { return p.buffer }

// Flip returns the Update phase with the other buffer index.
// Other phases are returned unchanged.
func (p Phase) Flip() Phase {
	if p.kind != PhaseUpdate {
		return p
	}
	return UpdatePhase(1 - p.buffer)
}

// String returns "Loading", "Init" or "Update(i)".
func (p Phase) String() string {
	if p.kind == PhaseUpdate {
		return fmt.Sprintf("Update(%d)", p.buffer)
	}
	return p.kind.String()
}
