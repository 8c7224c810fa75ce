package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the disease status of a single person.
type Status int

const (
	Susceptible Status = iota
	Recovered
	Vaccinated
	Infected
)

// String returns the status name, used in logs.
func (s Status) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Recovered:
		return "recovered"
	case Vaccinated:
		return "vaccinated"
	case Infected:
		return "infected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// PersonState is the state of one person at the start of a day.
// DaysInfected is only meaningful when Status is Infected; it counts
// completed days of infection and starts at 0 on the day of infection.
type PersonState struct {
	Status       Status
	DaysInfected int
}

// Convenience constructors.
func SusceptiblePerson() PersonState { return PersonState{Status: Susceptible} }
func RecoveredPerson() PersonState   { return PersonState{Status: Recovered} }
func VaccinatedPerson() PersonState  { return PersonState{Status: Vaccinated} }
func InfectedPerson(days int) PersonState {
	return PersonState{Status: Infected, DaysInfected: days}
}

// IsInfected reports whether the person is currently infectious.
func (p PersonState) IsInfected() bool { return p.Status == Infected }

// IsSusceptible reports whether the person can still be infected.
func (p PersonState) IsSusceptible() bool { return p.Status == Susceptible }

// IsImmune reports whether the person is in a terminal state.
func (p PersonState) IsImmune() bool {
	return p.Status == Recovered || p.Status == Vaccinated
}

// String renders the token form: "S", "R", "V" or "I<days>".
func (p PersonState) String() string {
	switch p.Status {
	case Susceptible:
		return "S"
	case Recovered:
		return "R"
	case Vaccinated:
		return "V"
	case Infected:
		return "I" + strconv.Itoa(p.DaysInfected)
	default:
		return "?"
	}
}

// ParseError reports a malformed person-state token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid person state %q: %s", e.Token, e.Reason)
}

// ParsePersonState decodes a single token. Accepted forms are "S", "R",
// "V" and "I" followed by a non-negative decimal integer.
func ParsePersonState(token string) (PersonState, error) {
	switch token {
	case "S":
		return SusceptiblePerson(), nil
	case "R":
		return RecoveredPerson(), nil
	case "V":
		return VaccinatedPerson(), nil
	}

	if !strings.HasPrefix(token, "I") {
		return PersonState{}, &ParseError{Token: token, Reason: "must be S, R, V or I<days>"}
	}
	suffix := token[1:]
	if suffix == "" {
		return PersonState{}, &ParseError{Token: token, Reason: "missing infected day count"}
	}
	// Atoi accepts a leading sign; the day count is digits only.
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return PersonState{}, &ParseError{Token: token, Reason: "infected day count must be a non-negative integer"}
		}
	}
	days, err := strconv.Atoi(suffix)
	if err != nil {
		return PersonState{}, &ParseError{Token: token, Reason: "infected day count out of range"}
	}
	return InfectedPerson(days), nil
}
