// Package discovery advertises the receiver over mDNS so the companion
// device can locate it without manual configuration.
package discovery

import (
	"fmt"
	"net"
	"os"

	"github.com/grandcat/zeroconf"
	"github.com/wb-go/wbf/zlog"

	"github.com/duoduojuzi/fastsync-receiver/internal/netutil"
)

const (
	domain           = "local."
	instanceSuffix   = "_fastsync"
	fallbackHostname = "fast-sync-pc"
)

// Broadcaster registers a single mDNS service record for the ingestion
// gateway. The record is registered once and kept for the process lifetime;
// there is no re-registration on IP change and no teardown on shutdown.
type Broadcaster struct {
	service  string
	port     int
	selectIP func() (net.IP, error)

	server *zeroconf.Server
}

// New creates a broadcaster for the given service type and port.
func New(service string, port int) *Broadcaster {
	return &Broadcaster{
		service:  service,
		port:     port,
		selectIP: netutil.PreferredIP,
	}
}

// instanceName disambiguates multiple hosts on one network by combining the
// machine's hostname with the application suffix.
func instanceName(hostname string) string {
	if hostname == "" {
		hostname = fallbackHostname
	}
	return hostname + instanceSuffix
}

// Register selects the local IP and publishes the service record. When no
// usable address exists the record is skipped; the gateway stays reachable
// by direct IP.
func (b *Broadcaster) Register() error {
	ip, err := b.selectIP()
	if err != nil {
		return fmt.Errorf("select local ip: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("hostname unavailable, using fallback")
		hostname = fallbackHostname
	}
	instance := instanceName(hostname)

	server, err := zeroconf.RegisterProxy(
		instance,
		b.service,
		domain,
		b.port,
		instance,
		[]string{ip.String()},
		nil,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register mdns service: %w", err)
	}

	// Ownership stays with the broadcaster until the process exits.
	b.server = server

	zlog.Logger.Info().
		Str("instance", instance).
		Str("service", b.service).
		Str("ip", ip.String()).
		Int("port", b.port).
		Msg("mdns service registered")

	return nil
}
