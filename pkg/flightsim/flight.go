package flightsim

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simulation constants. These are fixed for every run and are not exposed
// through configuration.
const (
	// ObjectCount is the number of flights generated for a simulation.
	ObjectCount = 1000

	// MinLatitude and MaxLatitude bound the initial latitude in degrees.
	MinLatitude = -70.0
	MaxLatitude = 70.0

	// MinLongitude and MaxLongitude bound the initial longitude in degrees.
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// Speed is the distance in degrees a flight moves along each axis
	// component of its heading per tick.
	Speed = 0.00125

	// TickInterval is the cadence of the motion stepper.
	TickInterval = 16 * time.Millisecond

	// RunDuration is how long the motion stepper runs before stopping itself.
	RunDuration = 5 * time.Minute

	// snapshotFlag is the trailing field of every snapshot. Downstream
	// consumers treat it as an opaque value.
	snapshotFlag = "false"
)

// Flight is a single simulated aircraft.
// Positions are plain degrees with no wraparound or clamping, so a long
// running flight may drift outside valid geographic ranges.
type Flight struct {
	// Name is the sequential identifier (Object_1 ... Object_N)
	Name string

	// Latitude in decimal degrees
	Latitude float64

	// Longitude in decimal degrees
	Longitude float64

	// Direction is the unit heading vector (X = cos, Y = sin).
	// It never changes after generation.
	Direction r2.Vec
}

// Advance moves the flight one step along its heading.
// Each coordinate is moved independently by the matching heading component.
func (f *Flight) Advance(speed float64) {
	step := r2.Scale(speed, f.Direction)
	f.Latitude += step.Y
	f.Longitude += step.X
}

// Snapshot formats the flight for the feed as "name;longitude;latitude;false"
// with six decimal digits for both coordinates.
func (f *Flight) Snapshot() string {
	return fmt.Sprintf("%s;%.6f;%.6f;%s", f.Name, f.Longitude, f.Latitude, snapshotFlag)
}

// String representation for logging
func (f *Flight) String() string {
	return fmt.Sprintf("Flight[%s] Pos: (%.4f, %.4f) Dir: (%.3f, %.3f)",
		f.Name, f.Latitude, f.Longitude, f.Direction.X, f.Direction.Y)
}

// flightName returns the name of the flight at a zero-based index.
func flightName(index int) string {
	return fmt.Sprintf("Object_%d", index+1)
}
