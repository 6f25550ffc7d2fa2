package mission

import (
	"fmt"

	"github.com/OCAP2/missioncontrol/internal/stats"
)

func (m *Mission) printPlan() {
	fmt.Fprintln(m.term)
	fmt.Fprintln(m.term, "Mission plan:")
	fmt.Fprintf(m.term, "  Distance to goal(km):     %s\n", stats.Format(TravelDistanceGoal))
	fmt.Fprintf(m.term, "  Payload capacity(kg):     %s\n", stats.Format(PayloadCapacity))
	fmt.Fprintf(m.term, "  Fuel capacity(liters):    %s\n", stats.Format(FuelCapacity))
	fmt.Fprintf(m.term, "  Estimated burn rate(l/m): %s\n", stats.Format(EstimatedBurnRate))
	fmt.Fprintf(m.term, "  Average speed(km/h):      %s\n", stats.Format(EstimatedAverageSpeed))
	fmt.Fprintf(m.term, "  Estimated flight time(m): %s\n", stats.Format(EstimatedFlightTime))
}

func (m *Mission) printStatistics() {
	fmt.Fprintln(m.term)
	fmt.Fprintln(m.term, "Mission Statistics:")
	fmt.Fprintf(m.term, "  Distance traveled(km): %s\n", stats.Format(m.travelDistance))
	fmt.Fprintf(m.term, "  Average speed(km/h):   %s\n", stats.Format(m.speed))
	fmt.Fprintf(m.term, "  Fuel burned(liters):   %s\n", stats.Format(m.fuelBurned))
	fmt.Fprintf(m.term, "  Flight time(m):        %s\n", stats.Format(m.flightTime))
}
