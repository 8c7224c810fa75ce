package model

import (
	"errors"
	"testing"
)

func TestParsePersonState(t *testing.T) {
	cases := []struct {
		token string
		want  PersonState
	}{
		{"S", SusceptiblePerson()},
		{"R", RecoveredPerson()},
		{"V", VaccinatedPerson()},
		{"I0", InfectedPerson(0)},
		{"I3", InfectedPerson(3)},
		{"I12", InfectedPerson(12)},
	}
	for _, tc := range cases {
		got, err := ParsePersonState(tc.token)
		if err != nil {
			t.Fatalf("ParsePersonState(%q) error: %v", tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePersonState(%q) = %+v, want %+v", tc.token, got, tc.want)
		}
		if got.String() != tc.token {
			t.Fatalf("String() = %q, want %q", got.String(), tc.token)
		}
	}
}

func TestParsePersonStateRejectsMalformedTokens(t *testing.T) {
	for _, token := range []string{"", "X", "s", "I", "I-1", "I+2", "Ia", "I2x", "IS", "SR"} {
		_, err := ParsePersonState(token)
		if err == nil {
			t.Fatalf("ParsePersonState(%q) expected error", token)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("ParsePersonState(%q) error %v is not a *ParseError", token, err)
		}
		if perr.Token != token {
			t.Fatalf("ParseError.Token = %q, want %q", perr.Token, token)
		}
	}
}

func TestParsePopulationTrimsAndWrapsErrors(t *testing.T) {
	pop, err := ParsePopulation(" S, I0 ,R,V ")
	if err != nil {
		t.Fatalf("ParsePopulation error: %v", err)
	}
	want := MustParseTokens("S", "I0", "R", "V")
	if !pop.Equal(want) {
		t.Fatalf("ParsePopulation = %v, want %v", pop, want)
	}
	if pop.String() != "S,I0,R,V" {
		t.Fatalf("String() = %q", pop.String())
	}

	_, err = ParsePopulation("S,Q,R")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected wrapped *ParseError, got %v", err)
	}
	if perr.Token != "Q" {
		t.Fatalf("ParseError.Token = %q, want Q", perr.Token)
	}
}

func TestPopulationCloneIsIndependent(t *testing.T) {
	pop := MustParseTokens("S", "I1")
	clone := pop.Clone()
	clone[0] = VaccinatedPerson()
	if pop[0] != SusceptiblePerson() {
		t.Fatalf("mutating clone changed original: %v", pop)
	}
}

func TestPopulationCounts(t *testing.T) {
	counts := MustParseTokens("S", "I0", "I4", "R", "V", "V").Counts()
	if counts[Susceptible] != 1 || counts[Infected] != 2 || counts[Recovered] != 1 || counts[Vaccinated] != 2 {
		t.Fatalf("Counts() = %v", counts)
	}
}
