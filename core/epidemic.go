package core

import (
	"fmt"

	"github.com/signalsfoundry/epidemic-simulator/model"
)

// CountInfected returns the number of currently infectious people.
func CountInfected(pop model.Population) int {
	n := 0
	for _, p := range pop {
		if p.IsInfected() {
			n++
		}
	}
	return n
}

// HasInfectedNeighbor reports whether the person at position is adjacent to
// an infected person. The person at position must be susceptible; calling
// it for anyone else is a programming error and panics.
func HasInfectedNeighbor(pop model.Population, position int) bool {
	if position < 0 || position >= len(pop) {
		panic(fmt.Sprintf("core: HasInfectedNeighbor position %d out of range [0,%d)", position, len(pop)))
	}
	if !pop[position].IsSusceptible() {
		panic(fmt.Sprintf("core: HasInfectedNeighbor called for %s person at position %d", pop[position].Status, position))
	}

	if position > 0 && pop[position-1].IsInfected() {
		return true
	}
	if position+1 < len(pop) && pop[position+1].IsInfected() {
		return true
	}
	return false
}

// AdvancePerson computes the next-day state of the person at position from
// the population as it stood at the start of the day.
func AdvancePerson(pop model.Population, position, daysContagious int) model.PersonState {
	current := pop[position]
	switch {
	case current.IsImmune():
		return current
	case current.IsInfected() && current.DaysInfected+1 >= daysContagious:
		return model.RecoveredPerson()
	case current.IsInfected():
		return model.InfectedPerson(current.DaysInfected + 1)
	case HasInfectedNeighbor(pop, position):
		return model.InfectedPerson(0)
	default:
		return current
	}
}

// SimulateOneDay advances every person by one day. Every transition reads
// the unmodified input; the result is always a freshly allocated slice.
func SimulateOneDay(pop model.Population, daysContagious int) model.Population {
	next := make(model.Population, len(pop))
	for i := range pop {
		next[i] = AdvancePerson(pop, i, daysContagious)
	}
	return next
}

// MaxDays is the safety bound on the number of simulated days: the
// population span plus one contagious period.
func MaxDays(pop model.Population, params Params) int {
	return len(pop) + params.DaysContagious
}
