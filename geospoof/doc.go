// Geolocation-spoofing detector.
//
// Cross-checks a user's self-reported GPS fix against IP-derived geolocation
// and the user's previous fix, flagging physically implausible travel
// (teleportation), GPS/IP disagreement, and VPN or datacenter egress. Each
// evaluation emits a GeoSpoofFinding with a bounded 0-100 suspicion score
// used to rank accounts for human review; the engine never confirms a spoof
// on its own.
//
// The core Engine is a pure function of its inputs. The Detector wraps it
// with the I/O pieces: IP resolution, finding-frequency counters, and
// account risk flags.
package geospoof
