package model

import (
	"fmt"
	"strings"
)

// Population is the ordered state of every person in the city. Position i
// is adjacent to i-1 and i+1 only.
//
// A Population is treated as an immutable value once built: day advances
// and vaccination return new slices rather than writing into this one.
type Population []PersonState

// ParsePopulation splits a comma-separated city description and decodes
// each whitespace-trimmed token. The returned error wraps a *ParseError.
func ParsePopulation(city string) (Population, error) {
	parts := strings.Split(city, ",")
	pop := make(Population, 0, len(parts))
	for i, part := range parts {
		p, err := ParsePersonState(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("person %d: %w", i, err)
		}
		pop = append(pop, p)
	}
	return pop, nil
}

// ParseTokens decodes an already-split token list.
func ParseTokens(tokens []string) (Population, error) {
	pop := make(Population, 0, len(tokens))
	for i, tok := range tokens {
		p, err := ParsePersonState(tok)
		if err != nil {
			return nil, fmt.Errorf("person %d: %w", i, err)
		}
		pop = append(pop, p)
	}
	return pop, nil
}

// MustParseTokens is ParseTokens for fixtures; it panics on error.
func MustParseTokens(tokens ...string) Population {
	pop, err := ParseTokens(tokens)
	if err != nil {
		panic(err)
	}
	return pop
}

// Clone returns a copy that shares no storage with p.
func (p Population) Clone() Population {
	if p == nil {
		return nil
	}
	out := make(Population, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both populations hold the same states in order.
func (p Population) Equal(other Population) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Strings renders every person in token form.
func (p Population) Strings() []string {
	out := make([]string, len(p))
	for i, person := range p {
		out[i] = person.String()
	}
	return out
}

// String renders the population as a comma-separated city description,
// the inverse of ParsePopulation.
func (p Population) String() string {
	return strings.Join(p.Strings(), ",")
}

// Counts tallies people by status.
func (p Population) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, person := range p {
		counts[person.Status]++
	}
	return counts
}
