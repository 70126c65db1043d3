package discovery

import (
	"testing"

	"github.com/windlab-project/windlab-go/pkg/version"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name string
		svc  BackendService
		want string
	}{
		{
			name: "prefers resolved address",
			svc: BackendService{
				Host:      "bench-pi.local.",
				Port:      8000,
				Addresses: []string{"192.168.1.50"},
				Path:      "/ws",
			},
			want: "ws://192.168.1.50:8000/ws",
		},
		{
			name: "falls back to hostname",
			svc: BackendService{
				Host: "bench-pi.local.",
				Port: 8000,
			},
			want: "ws://bench-pi.local:8000/ws",
		},
		{
			name: "brackets IPv6 addresses",
			svc: BackendService{
				Host:      "bench-pi.local.",
				Port:      8000,
				Addresses: []string{"fe80::1"},
			},
			want: "ws://[fe80::1]:8000/ws",
		},
		{
			name: "defaults port and path",
			svc: BackendService{
				Host: "bench-pi.local",
			},
			want: "ws://bench-pi.local:8000/ws",
		},
		{
			name: "custom path",
			svc: BackendService{
				Host:      "bench-pi.local",
				Port:      9000,
				Addresses: []string{"10.0.0.2"},
				Path:      "/telemetry",
			},
			want: "ws://10.0.0.2:9000/telemetry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.svc.Endpoint(); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTXTRoundTrip(t *testing.T) {
	svc := BackendService{
		Name: "Wind Tunnel Bench 2",
		Path: "/ws",
	}

	var decoded BackendService
	if err := decoded.DecodeTXT(svc.EncodeTXT()); err != nil {
		t.Fatalf("DecodeTXT() error = %v", err)
	}

	if got, want := decoded.Version.String(), version.Current; got != want {
		t.Errorf("Version = %s, want %s", got, want)
	}
	if decoded.Name != svc.Name {
		t.Errorf("Name = %q, want %q", decoded.Name, svc.Name)
	}
	if decoded.Path != "/ws" {
		t.Errorf("Path = %q, want /ws", decoded.Path)
	}
}

func TestDecodeTXT(t *testing.T) {
	tests := []struct {
		name    string
		records []string
		wantErr bool
	}{
		{"empty defaults", nil, false},
		{"unknown keys ignored", []string{"x=1", "flag"}, false},
		{"explicit version", []string{"v=1.2"}, false},
		{"bad version", []string{"v=two"}, true},
		{"integer version", []string{"v=1"}, true},
		{"bad path", []string{"path=ws"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc BackendService
			err := svc.DecodeTXT(tt.records)
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodeTXT(%v) error = %v, wantErr %v", tt.records, err, tt.wantErr)
			}
			if err == nil && svc.Path == "" {
				t.Error("Path default not applied")
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	svc := BackendService{Version: version.Version{Major: 1, Minor: 7}}
	if !svc.Compatible() {
		t.Error("same-major service reported incompatible")
	}

	svc.Version = version.Version{Major: 2}
	if svc.Compatible() {
		t.Error("next-major service reported compatible")
	}
}

func TestMergeAddresses(t *testing.T) {
	got := mergeAddresses(
		[]string{"192.168.1.50"},
		[]string{"192.168.1.50", "10.0.0.2"},
	)
	if len(got) != 2 || got[0] != "192.168.1.50" || got[1] != "10.0.0.2" {
		t.Errorf("mergeAddresses() = %v", got)
	}
}
