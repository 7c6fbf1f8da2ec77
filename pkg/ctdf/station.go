package ctdf

import (
	"fmt"
	"strconv"
	"strings"
)

// StationCodeNamespace identifies which of the two upstream code systems a
// station identifier belongs to. The same physical station can appear under
// both, but the mapping is partial and never assumed bijective.
type StationCodeNamespace string

const (
	// StationCodeNamespaceENEE is the 'S'-prefixed ENEE code padded to 5 digits (e.g. S01700)
	StationCodeNamespaceENEE StationCodeNamespace = "ENEE"
	// StationCodeNamespaceRICS is the long numeric RICS-derived code (e.g. 830001700)
	StationCodeNamespaceRICS StationCodeNamespace = "RICS"
	// StationCodeNamespaceOpaque covers identifiers the upstream never resolves
	// to a human readable form, such as the 'F'-prefixed ones
	StationCodeNamespaceOpaque StationCodeNamespace = "Opaque"
)

type StationCode struct {
	Namespace StationCodeNamespace `groups:"basic"`
	Value     string               `groups:"basic"`
}

func ParseStationCode(raw string) StationCode {
	raw = strings.TrimSpace(raw)

	if len(raw) == 6 && raw[0] == 'S' {
		if _, err := strconv.Atoi(raw[1:]); err == nil {
			return StationCode{Namespace: StationCodeNamespaceENEE, Value: raw}
		}
	}

	if len(raw) >= 8 {
		if _, err := strconv.Atoi(raw); err == nil {
			return StationCode{Namespace: StationCodeNamespaceRICS, Value: raw}
		}
	}

	return StationCode{Namespace: StationCodeNamespaceOpaque, Value: raw}
}

func StationCodeFromENEE(enee int) StationCode {
	return StationCode{
		Namespace: StationCodeNamespaceENEE,
		Value:     fmt.Sprintf("S%05d", enee),
	}
}

// ENEE returns the bare numeric ENEE code, which the journey search endpoint
// expects without the 'S' prefix. RICS codes strip their 830 prefix, matching
// the partial translation the upstream itself performs. Opaque codes do not
// translate.
func (c StationCode) ENEE() (int, bool) {
	switch c.Namespace {
	case StationCodeNamespaceENEE:
		n, err := strconv.Atoi(c.Value[1:])
		return n, err == nil
	case StationCodeNamespaceRICS:
		trimmed := strings.TrimPrefix(c.Value, "830")
		n, err := strconv.Atoi(trimmed)
		return n, err == nil
	}

	return 0, false
}

func (c StationCode) String() string {
	return c.Value
}

// SameStation reports whether two codes denote the same physical station.
// Codes in different namespaces only match when both translate to the same
// ENEE code; an untranslatable code never matches across namespaces.
func (c StationCode) SameStation(other StationCode) bool {
	if c.Namespace == other.Namespace {
		return c.Value == other.Value
	}

	cENEE, cOK := c.ENEE()
	otherENEE, otherOK := other.ENEE()

	return cOK && otherOK && cENEE == otherENEE
}

type Station struct {
	Code StationCode `groups:"basic"`

	PrimaryName string `groups:"basic"`
	ShortName   string `groups:"basic"`

	Region RegionCode `groups:"basic"`

	// WeatherHazard marks stations in regions known to return unreliable
	// results for weather style lookups (region 9, Trentino-Alto Adige)
	WeatherHazard bool `groups:"detailed"`

	// MapLocation is opaque pass-through of the upstream latMappaCitta /
	// lonMappaCitta fields, whose meaning is undocumented
	MapLocation *Location `groups:"detailed"`
}

type Location struct {
	Latitude  float64 `groups:"detailed"`
	Longitude float64 `groups:"detailed"`
}

// RegionCode is the upstream enumeration of Italian administrative regions,
// 0 meaning all of Italy.
type RegionCode int

const (
	RegionCodeNationwide        RegionCode = 0
	RegionCodeTrentinoAltoAdige RegionCode = 9

	RegionCodeMax RegionCode = 22
)

func (r RegionCode) IsValid() bool {
	return r >= RegionCodeNationwide && r <= RegionCodeMax
}

func (r RegionCode) IsWeatherHazard() bool {
	return r == RegionCodeTrentinoAltoAdige
}
