package geospoof

import (
	"slices"
	"time"
)

// LocationFix origin.
const (
	SourceGPS = "gps"
	SourceIP  = "ip"
)

// Detection flags attached to findings.
const (
	FlagHighVelocity    = "high_velocity"
	FlagIPMismatch      = "ip_mismatch"
	FlagVPN             = "vpn_detected"
	FlagDataCenter      = "datacenter_detected"
	FlagFrequentChanges = "frequent_location_changes"
)

// Review states for a finding. Every finding is emitted Unconfirmed; the
// terminal states are applied by a moderator action out-of-band, never by
// this engine.
const (
	StateUnconfirmed    = "unconfirmed"
	StateConfirmedSpoof = "confirmed_spoof"
	StateDismissed      = "dismissed"
)

// One reported location for a user. The engine does not persist fixes; the
// caller supplies the current and previous fix.
type LocationFix struct {
	UserID     string    `json:"userId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observedAt"`
}

// Outcome of one spoof evaluation. DistanceKm/VelocityKmh describe travel
// since the previous fix; IPDistanceKm is the GPS/IP disagreement. This is
// the only record the engine is responsible for producing (storing it is
// the caller's job).
type GeoSpoofFinding struct {
	UserID           string    `json:"userId"`
	DistanceKm       int       `json:"distanceKm"`
	VelocityKmh      int       `json:"velocityKmh"`
	IPDistanceKm     int       `json:"ipDistanceKm,omitempty"`
	SuspicionScore   int       `json:"suspicionScore"`
	Flags            []string  `json:"flags"`
	IsConfirmedSpoof bool      `json:"isConfirmedSpoof"`
	DetectedAt       time.Time `json:"detectedAt"`
}

func (f *GeoSpoofFinding) HasFlag(name string) bool {
	return slices.Contains(f.Flags, name)
}
