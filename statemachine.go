// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import "fmt"

// PipelineState is a status snapshot of one kernel program.
type PipelineState struct {
	Status PipelineStatus

	// Err describes the failure when Status is StatusFailed.
	Err error
}

// Readiness is everything the state machine looks at in one frame.
type Readiness struct {
	Init   PipelineState
	Update PipelineState

	// BindingsReady reports that both binding sets exist.
	BindingsReady bool

	// ClockFired reports that the simulation clock completed on this frame.
	ClockFired bool
}

// StateMachine decides the simulation phase once per frame.
//
// Transitions:
//
//	Loading   + Init Ready, bindings ready -> Init
//	Loading   + Init Failed                -> fatal
//	Init      + Update Ready               -> Update(1)
//	Init      + Update Failed              -> fatal
//	Update(i) + clock fired                -> Update(1-i)
//
// Every other combination keeps the current phase. At most one transition
// happens per Advance call.
type StateMachine struct {
	phase       Phase
	transitions uint64
}

// NewStateMachine returns a state machine in the Loading phase.
func NewStateMachine() *StateMachine {
	return &StateMachine{phase: LoadingPhase()}
}

// Phase returns the current phase.
func (m *StateMachine) Phase() Phase {
	return m.phase
}

// Transitions returns how many phase changes have happened.
func (m *StateMachine) Transitions() uint64 {
	return m.transitions
}

// Advance evaluates the transition table for one frame and returns the
// resulting phase. A non-nil error is fatal; the phase is left unchanged.
func (m *StateMachine) Advance(r Readiness) (Phase, error) {
	next := m.phase

	switch m.phase.Kind() {
	case PhaseLoading:
		switch r.Init.Status {
		case StatusFailed:
			return m.phase, failure(r.Init, "init")
		case StatusReady:
			if r.BindingsReady {
				next = InitPhase()
			}
		}

	case PhaseInit:
		switch r.Update.Status {
		case StatusFailed:
			return m.phase, failure(r.Update, "update")
		case StatusReady:
			next = UpdatePhase(1)
		}

	case PhaseUpdate:
		if r.ClockFired {
			next = m.phase.Flip()
		}
	}

	if next != m.phase {
		Logger().Debug("lenia: phase transition", "from", m.phase.String(), "to", next.String())
		m.phase = next
		m.transitions++
	}
	return m.phase, nil
}

func failure(s PipelineState, program string) error {
	if s.Err != nil {
		return s.Err
	}
	return fmt.Errorf("%w: %s program", ErrCompileFailed, program)
}
