package discovery

import (
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures an mDNS advertiser.
type AdvertiserConfig struct {
	// Interface specifies which network interface to advertise on.
	// Empty string means all interfaces.
	Interface string
}

// Advertiser publishes a windlab backend over mDNS. Go backends and
// integration harnesses use it; the Python reference backend
// advertises the same records.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// getInterfaces returns the network interfaces to advertise on.
// Returns nil to use all interfaces.
func (a *Advertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising the service. An existing advertisement
// is replaced.
func (a *Advertiser) Advertise(svc *BackendService) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instance := svc.InstanceName
	if instance == "" {
		instance = "windlab"
	}
	port := int(svc.Port)
	if port == 0 {
		port = DefaultPort
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		svc.EncodeTXT(),
		a.getInterfaces(),
	)
	if err != nil {
		return fmt.Errorf("failed to register windlab service: %w", err)
	}

	a.server = server
	return nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
