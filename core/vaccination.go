package core

import (
	"math/rand/v2"

	"github.com/signalsfoundry/epidemic-simulator/model"
)

// Float64Source yields uniform values in [0,1). *rand.Rand satisfies it.
type Float64Source interface {
	Float64() float64
}

// NewRand returns the deterministic random source used for a trial seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Vaccinate draws one value per susceptible person, in position order, and
// vaccinates those whose draw falls below effectiveness. The draw happens
// even when effectiveness is zero so that the random stream consumed by a
// trial does not depend on the effectiveness value. The input is not
// modified.
func Vaccinate(pop model.Population, effectiveness float64, rng Float64Source) model.Population {
	next := pop.Clone()
	for i, p := range next {
		if !p.IsSusceptible() {
			continue
		}
		if rng.Float64() < effectiveness {
			next[i] = model.VaccinatedPerson()
		}
	}
	return next
}

func countNewlyVaccinated(before, after model.Population) int {
	n := 0
	for i := range before {
		if before[i].IsSusceptible() && after[i].Status == model.Vaccinated {
			n++
		}
	}
	return n
}
