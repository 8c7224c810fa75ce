package core

import (
	"testing"

	"github.com/signalsfoundry/epidemic-simulator/model"
)

type scriptedSource struct {
	values []float64
	draws  int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.draws%len(s.values)]
	s.draws++
	return v
}

func TestVaccinateUsesOneDrawPerSusceptible(t *testing.T) {
	pop := model.MustParseTokens("S", "I0", "S", "R", "S", "V")
	src := &scriptedSource{values: []float64{0.1, 0.9, 0.5}}

	got := Vaccinate(pop, 0.5, src)

	if src.draws != 3 {
		t.Fatalf("draws = %d, want 3", src.draws)
	}
	// 0.1 < 0.5 vaccinates, 0.9 does not, 0.5 is not strictly less.
	if got.String() != "V,I0,S,R,S,V" {
		t.Fatalf("Vaccinate = %v, want V,I0,S,R,S,V", got)
	}
	if pop.String() != "S,I0,S,R,S,V" {
		t.Fatalf("input mutated: %v", pop)
	}
}

func TestVaccinateZeroEffectivenessStillDraws(t *testing.T) {
	pop := model.MustParseTokens("S", "S", "I1")
	src := &scriptedSource{values: []float64{0}}

	got := Vaccinate(pop, 0, src)

	if !got.Equal(pop) {
		t.Fatalf("Vaccinate with zero effectiveness = %v, want %v", got, pop)
	}
	if src.draws != 2 {
		t.Fatalf("draws = %d, want 2", src.draws)
	}
}

func TestVaccinateFullEffectiveness(t *testing.T) {
	pop := model.MustParseTokens("S", "I0", "S", "R")
	got := Vaccinate(pop, 1, NewRand(7))
	if got.String() != "V,I0,V,R" {
		t.Fatalf("Vaccinate = %v, want V,I0,V,R", got)
	}
	if n := countNewlyVaccinated(pop, got); n != 2 {
		t.Fatalf("countNewlyVaccinated = %d, want 2", n)
	}
}

func TestNewRandIsDeterministic(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 10; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}
