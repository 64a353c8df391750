// Package netutil selects the local IP address the receiver advertises and
// displays. The same policy is used by the discovery broadcaster and the tray
// status dialog.
package netutil

import (
	"errors"
	"net"
	"strings"
)

// ErrNoAddress is returned when no usable non-loopback IPv4 address exists.
var ErrNoAddress = errors.New("no usable local address")

// Candidate is one interface address considered for selection.
type Candidate struct {
	Name string
	IP   net.IP
}

// Adapter name fragments that mark virtualization, container, tunnel or VPN
// interfaces. Addresses on those interfaces lose ties against physical ones.
var virtualFragments = []string{
	"wsl",
	"docker",
	"vethernet",
	"tailscale",
	"meta",
	"loopback",
}

func isVirtual(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range virtualFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// rank orders IPv4 addresses by how likely they are to be the LAN address the
// companion device can reach: private 192.168.* first, then 10.*/172.*,
// then everything else.
func rank(ip string) int {
	switch {
	case strings.HasPrefix(ip, "192.168."):
		return 3
	case strings.HasPrefix(ip, "10."), strings.HasPrefix(ip, "172."):
		return 2
	default:
		return 1
	}
}

// Best picks the preferred address out of candidates. Loopback, link-local
// and non-IPv4 addresses are excluded. Higher rank wins, then non-virtual
// interface names, then first-encountered order.
func Best(candidates []Candidate) (net.IP, bool) {
	var (
		best     net.IP
		bestRank int
		bestPhys bool
		found    bool
	)

	for _, c := range candidates {
		ip4 := c.IP.To4()
		if ip4 == nil {
			continue
		}

		ipStr := ip4.String()
		if strings.HasPrefix(ipStr, "127.") || strings.HasPrefix(ipStr, "169.254.") {
			continue
		}

		r := rank(ipStr)
		phys := !isVirtual(c.Name)

		better := r > bestRank || (r == bestRank && phys && !bestPhys)
		if !found || better {
			best = ip4
			bestRank = r
			bestPhys = phys
			found = true
		}
	}

	return best, found
}

// Interfaces lists candidate addresses from all interfaces that are up.
func Interfaces() ([]Candidate, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{Name: iface.Name, IP: ipNet.IP})
		}
	}

	return candidates, nil
}

// PreferredIP returns the address the receiver should advertise.
func PreferredIP() (net.IP, error) {
	candidates, err := Interfaces()
	if err != nil {
		return nil, err
	}

	ip, ok := Best(candidates)
	if !ok {
		return nil, ErrNoAddress
	}

	return ip, nil
}
