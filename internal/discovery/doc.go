// Package discovery locates Bose SoundTouch speakers on the local network.
//
// Speakers announce themselves over multicast DNS using the
// "_soundtouch._tcp" service type. The package offers two modes built on
// the same browse machinery:
//
//  1. One-shot: Scan browses for a bounded window and returns every
//     distinct speaker seen, deduplicated by host:port.
//  2. Continuous: Browse runs until its context is cancelled and emits a
//     Notification whenever a speaker appears or announces departure.
//
// # Address Selection
//
// When an announcement carries multiple addresses, the first IPv4 address
// wins; entries without one fall back to the advertised hostname with the
// trailing dot trimmed. Entries with neither are skipped.
//
// # Static Configuration
//
// A Browser is seeded with statically configured endpoints. Seeded
// addresses are authoritative: continuous browsing never re-adds them,
// never removes them, and never replaces them with a discovered entry
// sharing the address.
//
// # Usage Example
//
//	// Discover speakers with the default 10-second timeout
//	browser := discovery.NewBrowser()
//	speakers, err := browser.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered speakers
//	for _, sp := range speakers {
//	    fmt.Printf("Found: %s\n", sp)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Speakers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. One-shot scans and a
// continuous session can run simultaneously; they share no device set.
package discovery
