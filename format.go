// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"errors"
	"net"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrAddressUnavailable is returned when a descriptor's endpoint
// cannot be described in the address grammar.
var ErrAddressUnavailable = errors.New("address unavailable")

// An Endpoint selects which of a descriptor's two endpoints Address
// describes.
type Endpoint int

const (
	Local Endpoint = iota
	Remote
)

// Address returns the textual form of one of the descriptor's
// endpoints, in the exact grammar accepted by Dial and Announce.
// IP hosts and services are always rendered numerically; no reverse
// name lookup is performed.
func Address(fd int, which Endpoint) (string, error) {
	var sa unix.Sockaddr
	var err error
	if which == Remote {
		sa, err = unix.Getpeername(fd)
		err = os.NewSyscallError("getpeername", err)
	} else {
		sa, err = unix.Getsockname(fd)
		err = os.NewSyscallError("getsockname", err)
	}
	if err != nil {
		return "", err
	}
	return formatSockaddr(fd, sa)
}

// formatSockaddr renders `<type>:<node>[:<service>]` for a live
// descriptor's socket address.
func formatSockaddr(fd int, sa unix.Sockaddr) (string, error) {
	socktype, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		socktype = unix.SOCK_STREAM
	}

	switch sa := sa.(type) {
	case *unix.SockaddrUnix:
		// The binding already bounds the path by the reported
		// sockaddr length, terminator or not.
		name, ok := typeName(unix.AF_UNIX, socktype)
		if !ok {
			return "", ErrAddressUnavailable
		}
		return name + ":" + sa.Name, nil
	case *unix.SockaddrInet4:
		name, ok := typeName(unix.AF_INET, socktype)
		if !ok {
			return "", ErrAddressUnavailable
		}
		host := net.IP(sa.Addr[:]).String()
		return name + ":" + host + ":" + strconv.Itoa(sa.Port), nil
	case *unix.SockaddrInet6:
		name, ok := typeName(unix.AF_INET6, socktype)
		if !ok {
			return "", ErrAddressUnavailable
		}
		host := net.IP(sa.Addr[:]).String()
		if zone := zoneName(sa.ZoneId); zone != "" {
			host += "%" + zone
		}
		return name + ":[" + host + "]:" + strconv.Itoa(sa.Port), nil
	}
	return "", ErrAddressUnavailable
}
