package flightsim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator draws the initial state of simulated flights.
// All ranges are fixed; only the random source varies between generators.
type Generator struct {
	latitude  distuv.Uniform
	longitude distuv.Uniform
	heading   distuv.Uniform
}

// NewGenerator creates a generator backed by src.
// A nil src uses the global math/rand/v2 source.
func NewGenerator(src rand.Source) *Generator {
	return &Generator{
		latitude:  distuv.Uniform{Min: MinLatitude, Max: MaxLatitude, Src: src},
		longitude: distuv.Uniform{Min: MinLongitude, Max: MaxLongitude, Src: src},
		heading:   distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src},
	}
}

// Generate returns exactly ObjectCount flights in creation order.
func (g *Generator) Generate() []*Flight {
	flights := make([]*Flight, 0, ObjectCount)
	for i := 0; i < ObjectCount; i++ {
		flights = append(flights, g.next(i))
	}
	return flights
}

// next draws one flight. Latitude, longitude and heading are drawn in that
// order so a seeded source always yields the same fleet.
func (g *Generator) next(index int) *Flight {
	lat := g.latitude.Rand()
	lon := g.longitude.Rand()
	return &Flight{
		Name:      flightName(index),
		Latitude:  lat,
		Longitude: lon,
		Direction: g.randomDirection(),
	}
}

// randomDirection converts a uniform angle in [0, 2π) to a unit vector.
func (g *Generator) randomDirection() r2.Vec {
	angle := g.heading.Rand()
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}
