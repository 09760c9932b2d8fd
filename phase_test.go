// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import "testing"

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{LoadingPhase(), "Loading"},
		{InitPhase(), "Init"},
		{UpdatePhase(0), "Update(0)"},
		{UpdatePhase(1), "Update(1)"},
		{UpdatePhase(3), "Update(1)"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if got := PhaseKind(9).String(); got != "Unknown(9)" {
		t.Errorf("PhaseKind(9).String() = %q, want Unknown(9)", got)
	}
}

func TestPhaseFlip(t *testing.T) {
	p := UpdatePhase(1)
	for i, want := range []int{0, 1, 0, 1} {
		p = p.Flip()
		if p.Kind() != PhaseUpdate || p.BufferIndex() != want {
			t.Errorf("flip %d: got %s, want Update(%d)", i, p, want)
		}
	}
	if got := LoadingPhase().Flip(); got != LoadingPhase() {
		t.Errorf("Loading.Flip() = %s, want Loading", got)
	}
	if got := InitPhase().Flip(); got != InitPhase() {
		t.Errorf("Init.Flip() = %s, want Init", got)
	}
	if got := InitPhase().BufferIndex(); got != 0 {
		t.Errorf("Init.BufferIndex() = %d, want 0", got)
	}
}
