package discovery

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/windlab-project/windlab-go/pkg/version"
)

// mDNS service constants.
const (
	// ServiceType is the mDNS service type for windlab backends.
	ServiceType = "_windlab._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is the backend's default listen port.
	DefaultPort = 8000

	// DefaultPath is the backend's default websocket path.
	DefaultPath = "/ws"

	// BrowseTimeout is the default timeout for Find.
	BrowseTimeout = 10 * time.Second
)

// BackendService describes a discovered windlab backend.
type BackendService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the backend's listen port.
	Port uint16

	// Addresses are the resolved IP addresses.
	Addresses []string

	// Version is the advertised protocol version.
	Version version.Version

	// Name is the user-facing backend name, if advertised.
	Name string

	// Path is the websocket path (default "/ws").
	Path string
}

// Endpoint returns a dialable websocket URL for the service.
// It prefers a resolved address over the mDNS hostname.
func (s *BackendService) Endpoint() string {
	host := strings.TrimSuffix(s.Host, ".")
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}

	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	path := s.Path
	if path == "" {
		path = DefaultPath
	}

	return fmt.Sprintf("ws://%s:%d%s", host, port, path)
}

// Compatible reports whether this library can talk to the service.
func (s *BackendService) Compatible() bool {
	return version.MustParse(version.Current).Compatible(s.Version)
}

// EncodeTXT builds the TXT records for a backend advertisement.
func (s *BackendService) EncodeTXT() []string {
	records := []string{
		"v=" + version.Current,
	}
	if s.Name != "" {
		records = append(records, "name="+s.Name)
	}
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	records = append(records, "path="+path)
	return records
}

// DecodeTXT parses TXT records into the service. Unknown keys are
// ignored; a missing version defaults to the current one.
func (s *BackendService) DecodeTXT(records []string) error {
	s.Version = version.MustParse(version.Current)
	s.Path = DefaultPath

	for _, record := range records {
		key, value, found := strings.Cut(record, "=")
		if !found {
			continue
		}
		switch key {
		case "v":
			v, err := version.Parse(value)
			if err != nil {
				return fmt.Errorf("invalid version record: %w", err)
			}
			s.Version = v
		case "name":
			s.Name = value
		case "path":
			if !strings.HasPrefix(value, "/") {
				return fmt.Errorf("invalid path %q", value)
			}
			s.Path = value
		}
	}
	return nil
}
