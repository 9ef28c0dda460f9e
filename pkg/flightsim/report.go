package flightsim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedReport is returned when a feed line does not follow the
// "name;longitude;latitude;flag" layout.
var ErrMalformedReport = errors.New("malformed flight report")

// reportFields is the number of ';' separated fields in a snapshot.
const reportFields = 4

// Report is a parsed feed snapshot as seen by a consumer.
type Report struct {
	// Name identifies the flight across snapshots
	Name string `json:"name"`

	// Longitude in decimal degrees
	Longitude float64 `json:"longitude"`

	// Latitude in decimal degrees
	Latitude float64 `json:"latitude"`

	// Flag is the trailing field, passed through untouched.
	// The generator always emits the literal "false".
	Flag string `json:"flag"`
}

// ParseReport splits a snapshot line into its four fields.
func ParseReport(line string) (Report, error) {
	parts := strings.Split(line, ";")
	if len(parts) != reportFields {
		return Report{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedReport, reportFields, len(parts))
	}

	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Report{}, fmt.Errorf("%w: longitude %q: %v", ErrMalformedReport, parts[1], err)
	}
	lat, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Report{}, fmt.Errorf("%w: latitude %q: %v", ErrMalformedReport, parts[2], err)
	}

	return Report{
		Name:      parts[0],
		Longitude: lon,
		Latitude:  lat,
		Flag:      parts[3],
	}, nil
}

// String formats the report back into the feed layout.
func (r Report) String() string {
	return fmt.Sprintf("%s;%.6f;%.6f;%s", r.Name, r.Longitude, r.Latitude, r.Flag)
}
