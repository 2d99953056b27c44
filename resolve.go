// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"context"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// An ipCandidate is one resolved endpoint a dial or announce may be
// attempted against.
type ipCandidate struct {
	family int
	sa     unix.Sockaddr
}

// candidates resolves the node and service of an IP address into an
// ordered list of socket addresses. Resolution goes through the
// system resolver and may block the calling goroutine.
//
// An empty node stands for "no node": the wildcard addresses when
// binding, the loopback addresses otherwise, matching getaddrinfo's
// treatment of a null node with and without AI_PASSIVE.
func (na *netAddr) candidates(passive bool) ([]ipCandidate, error) {
	network := "tcp"
	if na.socktype == unix.SOCK_DGRAM {
		network = "udp"
	}

	var port int
	if na.service != "" {
		p, err := net.DefaultResolver.LookupPort(context.Background(), network, na.service)
		if err != nil {
			return nil, err
		}
		port = p
	}

	var ips []net.IPAddr
	switch {
	case na.node != "":
		addrs, err := net.DefaultResolver.LookupIPAddr(context.Background(), na.node)
		if err != nil {
			return nil, err
		}
		ips = addrs
	case passive:
		ips = []net.IPAddr{{IP: net.IPv6unspecified}, {IP: net.IPv4zero}}
	default:
		ips = []net.IPAddr{{IP: net.IPv6loopback}, {IP: net.IPv4(127, 0, 0, 1)}}
	}

	var cs []ipCandidate
	for _, ia := range ips {
		if ip4 := ia.IP.To4(); ip4 != nil {
			if na.family == unix.AF_INET6 {
				continue
			}
			sa := &unix.SockaddrInet4{Port: port}
			copy(sa.Addr[:], ip4)
			cs = append(cs, ipCandidate{unix.AF_INET, sa})
		} else {
			if na.family == unix.AF_INET {
				continue
			}
			sa := &unix.SockaddrInet6{Port: port, ZoneId: zoneID(ia.Zone)}
			copy(sa.Addr[:], ia.IP.To16())
			cs = append(cs, ipCandidate{unix.AF_INET6, sa})
		}
	}
	if len(cs) == 0 {
		return nil, &net.AddrError{Err: "no suitable addresses", Addr: na.node}
	}
	return cs, nil
}

// zoneID converts an IPv6 zone name to an interface index.
func zoneID(zone string) uint32 {
	if zone == "" {
		return 0
	}
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index)
	}
	n, _ := strconv.Atoi(zone)
	return uint32(n)
}

// zoneName is the reverse of zoneID, falling back to the numeric
// index when the interface cannot be named.
func zoneName(id uint32) string {
	if id == 0 {
		return ""
	}
	if ifi, err := net.InterfaceByIndex(int(id)); err == nil {
		return ifi.Name
	}
	return strconv.Itoa(int(id))
}
