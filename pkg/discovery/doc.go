// Package discovery finds windlab backends on the local network.
//
// Backends advertise themselves over mDNS as "_windlab._tcp" services
// in the "local." domain. TXT records carry the protocol version and
// the websocket path, so a discovered service converts directly into
// a dialable ws:// endpoint.
//
// Discovery is optional: the client works fine with a configured
// endpoint. The monitor CLI uses Find to locate a backend when none
// is configured.
package discovery
