package domain

import (
	"fmt"
	"strings"
)

type Station string

const (
	StationPC1 Station = "pc1"
	StationPC2 Station = "pc2"
	StationPC3 Station = "pc3"
	StationPC4 Station = "pc4"
)

// StationCount is the size of the fixed station set.
const StationCount = 4

// Stations lists every station in pairing order.
var Stations = [StationCount]Station{StationPC1, StationPC2, StationPC3, StationPC4}

func ParseStation(raw string) (Station, error) {
	for _, station := range Stations {
		if string(station) == raw {
			return station, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownStation, raw)
}

// Index returns the station's position in Stations, or -1.
func (s Station) Index() int {
	for i, station := range Stations {
		if station == s {
			return i
		}
	}
	return -1
}

func (s Station) Label() string {
	return strings.ToUpper(string(s))
}

// SessionID is an opaque lobby token. The empty value means no session.
type SessionID string

func (id SessionID) Present() bool {
	return id != ""
}

// Assignments holds the last session id reported by each station, indexed
// by station order.
type Assignments [StationCount]SessionID

func (a Assignments) Get(station Station) SessionID {
	idx := station.Index()
	if idx < 0 {
		return ""
	}
	return a[idx]
}
