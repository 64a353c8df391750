package netutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cand(name, ip string) Candidate {
	return Candidate{Name: name, IP: net.ParseIP(ip)}
}

func TestBest_PrefersPrivateLAN(t *testing.T) {
	candidates := []Candidate{
		cand("eth0", "192.168.1.5"),
		cand("docker0", "172.17.0.1"),
		cand("lo", "127.0.0.1"),
	}

	ip, ok := Best(candidates)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.5", ip.String())
}

func TestBest_ExcludesLoopbackAndLinkLocal(t *testing.T) {
	candidates := []Candidate{
		cand("lo", "127.0.0.1"),
		cand("eth0", "169.254.10.20"),
	}

	_, ok := Best(candidates)
	assert.False(t, ok)
}

func TestBest_PrefersPhysicalOnEqualRank(t *testing.T) {
	candidates := []Candidate{
		cand("vEthernet (WSL)", "192.168.200.1"),
		cand("wlan0", "192.168.1.10"),
	}

	ip, ok := Best(candidates)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.10", ip.String())
}

func TestBest_RanksPrivateOverPublic(t *testing.T) {
	candidates := []Candidate{
		cand("eth0", "203.0.113.7"),
		cand("eth1", "10.0.0.3"),
	}

	ip, ok := Best(candidates)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.3", ip.String())
}

func TestBest_FirstEncounteredBreaksTies(t *testing.T) {
	candidates := []Candidate{
		cand("eth0", "192.168.1.5"),
		cand("wlan0", "192.168.1.6"),
	}

	ip, ok := Best(candidates)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.5", ip.String())
}

func TestBest_SkipsIPv6(t *testing.T) {
	candidates := []Candidate{
		cand("eth0", "fe80::1"),
		cand("eth0", "2001:db8::1"),
	}

	_, ok := Best(candidates)
	assert.False(t, ok)
}
