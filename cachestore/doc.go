// Component for caching arbitrary data (as JSON strings) with TTL expiry and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// This is used by the moderation consensus engine to cache decisions by content fingerprint, and by IP intelligence to cache geolocation lookups. The cache is the dominant cost-saving layer: a hit means zero external classifier calls.
package cachestore
