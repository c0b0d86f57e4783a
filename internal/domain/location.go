package domain

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// UnknownDistance is reported when either side of a distance computation
// has no coordinates.
const UnknownDistance = math.MaxFloat32

const earthRadiusMiles = 3958.8

// Location is a geocoded point with optional postal details.
type Location struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
}

// HasCoordinates reports whether the location can take part in distance math.
// (0,0) is treated as missing.
func (l Location) HasCoordinates() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// DistanceTo returns the great-circle distance in miles.
func (l Location) DistanceTo(to Location) float64 {
	if !l.HasCoordinates() || !to.HasCoordinates() {
		return UnknownDistance
	}

	lat1 := l.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (to.Longitude - l.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(a)))
}

// MapURL returns a maps link for the location.
func (l Location) MapURL() string {
	q := l.FullDisplayString()
	if l.HasCoordinates() {
		q = fmt.Sprintf("%f,%f", l.Latitude, l.Longitude)
	}
	return "https://maps.google.com/maps?q=" + url.QueryEscape(q)
}

// FullDisplayString joins the address parts into a single line.
func (l Location) FullDisplayString() string {
	var parts []string
	if l.Address != "" {
		parts = append(parts, l.Address)
	}
	if l.City != "" {
		parts = append(parts, l.City)
	}

	stateZip := strings.TrimSpace(l.State + " " + l.PostalCode)
	if stateZip != "" {
		parts = append(parts, stateZip)
	}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	return strings.Join(parts, ", ")
}

// Map keys used by Map and LocationFromMap
const (
	locKeyLatitude   = "latitude"
	locKeyLongitude  = "longitude"
	locKeyAddress    = "address"
	locKeyCity       = "city"
	locKeyState      = "state"
	locKeyPostalCode = "postalCode"
	locKeyCountry    = "country"
)

// Map converts the location to a plain key-value mapping.
func (l Location) Map() map[string]any {
	return map[string]any{
		locKeyLatitude:   l.Latitude,
		locKeyLongitude:  l.Longitude,
		locKeyAddress:    l.Address,
		locKeyCity:       l.City,
		locKeyState:      l.State,
		locKeyPostalCode: l.PostalCode,
		locKeyCountry:    l.Country,
	}
}

// CanReadMap reports whether m carries at least the coordinate fields.
func CanReadMap(m map[string]any) bool {
	_, okLat := toFloat(m[locKeyLatitude])
	_, okLon := toFloat(m[locKeyLongitude])
	return okLat && okLon
}

// LocationFromMap is the inverse of Location.Map. Missing string fields stay empty.
func LocationFromMap(m map[string]any) (Location, bool) {
	if !CanReadMap(m) {
		return Location{}, false
	}
	lat, _ := toFloat(m[locKeyLatitude])
	lon, _ := toFloat(m[locKeyLongitude])
	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	return Location{
		Latitude:   lat,
		Longitude:  lon,
		Address:    str(locKeyAddress),
		City:       str(locKeyCity),
		State:      str(locKeyState),
		PostalCode: str(locKeyPostalCode),
		Country:    str(locKeyCountry),
	}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
