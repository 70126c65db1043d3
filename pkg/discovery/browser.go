package discovery

import (
	"context"
	"errors"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// ErrNotFound indicates no backend was discovered before the timeout.
var ErrNotFound = errors.New("no windlab backend found")

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// Browser discovers windlab backends over mDNS.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a browser.
func NewBrowser(config BrowserConfig) *Browser {
	return &Browser{config: config}
}

// getInterfaces returns the network interfaces to browse on.
// Returns nil to use all interfaces.
func (b *Browser) getInterfaces() []net.Interface {
	if b.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(b.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Browse emits discovered backends until the context is cancelled.
// Services seen on multiple interfaces are aggregated by instance
// name and emitted once.
func (b *Browser) Browse(ctx context.Context) (<-chan *BackendService, error) {
	out := make(chan *BackendService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := b.getInterfaces(); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	go func() {
		defer close(out)

		seen := make(map[string]*BackendService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if svc == nil {
					continue
				}

				if existing, found := seen[svc.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}

				seen[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(seen, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// Find returns the first backend discovered, or ErrNotFound when the
// context expires first. Callers bound the wait with a context
// timeout (BrowseTimeout is a sensible default).
func (b *Browser) Find(ctx context.Context) (*BackendService, error) {
	services, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	select {
	case svc, ok := <-services:
		if !ok {
			return nil, ErrNotFound
		}
		return svc, nil
	case <-ctx.Done():
		return nil, ErrNotFound
	}
}

// entryToService converts a raw mDNS entry. Returns nil for entries
// with undecodable TXT records or an incompatible protocol version.
func entryToService(entry *zeroconf.ServiceEntry) *BackendService {
	svc := &BackendService{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
	}
	for _, addr := range entry.AddrIPv4 {
		svc.Addresses = append(svc.Addresses, addr.String())
	}
	for _, addr := range entry.AddrIPv6 {
		svc.Addresses = append(svc.Addresses, addr.String())
	}
	if err := svc.DecodeTXT(entry.Text); err != nil {
		return nil
	}
	if !svc.Compatible() {
		return nil
	}
	return svc
}

// mergeAddresses appends addresses not already present.
func mergeAddresses(existing, incoming []string) []string {
	known := make(map[string]struct{}, len(existing))
	for _, addr := range existing {
		known[addr] = struct{}{}
	}
	for _, addr := range incoming {
		if _, ok := known[addr]; !ok {
			existing = append(existing, addr)
		}
	}
	return existing
}
