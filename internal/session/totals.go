package session

import "github.com/OCAP2/missioncontrol/internal/mission"

// Totals aggregates every launch attempt of a session.
type Totals struct {
	TravelDistance float64 // kilometers
	FuelBurned     float64 // liters
	FlightTime     float64 // minutes

	Attempts   int
	Aborted    int
	Explosions int
	Successes  int
}

// Add folds one attempt's final snapshot into the totals.
func (t *Totals) Add(s mission.Snapshot) {
	t.TravelDistance += s.TravelDistance
	t.FuelBurned += s.FuelBurned
	t.FlightTime += s.FlightTime
	t.Attempts++

	switch s.State {
	case mission.Aborted:
		t.Aborted++
	case mission.Exploded:
		t.Explosions++
	case mission.Succeeded:
		t.Successes++
	}
}
