// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrInvalidAddress is returned when an address string does not
// follow the `<type>:<node>[:<service>]` grammar. All grammar
// violations (unknown type token, oversized field, malformed
// bracketing) report this single condition.
var ErrInvalidAddress = errors.New("invalid address")

// Field bounds, matching getaddrinfo's NI_MAXHOST and NI_MAXSERV.
const (
	maxNodeLen    = 1025
	maxServiceLen = 32
)

// netTypes maps type tokens to their (family, socket kind) pair.
// The table is read-only after initialization; the formatter scans
// it in the reverse direction, so the unversioned IP entries must
// come first.
var netTypes = []struct {
	name     string
	family   int
	socktype int
}{
	{"tcp", unix.AF_UNSPEC, unix.SOCK_STREAM},
	{"udp", unix.AF_UNSPEC, unix.SOCK_DGRAM},
	{"tcp4", unix.AF_INET, unix.SOCK_STREAM},
	{"udp4", unix.AF_INET, unix.SOCK_DGRAM},
	{"tcp6", unix.AF_INET6, unix.SOCK_STREAM},
	{"udp6", unix.AF_INET6, unix.SOCK_DGRAM},
	{"unix", unix.AF_UNIX, unix.SOCK_STREAM},
	{"unixp", unix.AF_UNIX, unix.SOCK_SEQPACKET},
}

// lookupType resolves a type token, case-insensitively.
func lookupType(name string) (family, socktype int, ok bool) {
	for _, t := range netTypes {
		if strings.EqualFold(name, t.name) {
			return t.family, t.socktype, true
		}
	}
	return 0, 0, false
}

// typeName is the reverse lookup used by the formatter. The
// unversioned entries match either IP family, so `tcp` and `udp`
// are the canonical rendered tokens for IP endpoints.
func typeName(family, socktype int) (string, bool) {
	for _, t := range netTypes {
		if t.socktype != socktype {
			continue
		}
		switch t.family {
		case family:
			return t.name, true
		case unix.AF_UNSPEC:
			if family == unix.AF_INET || family == unix.AF_INET6 {
				return t.name, true
			}
		}
	}
	return "", false
}

// A netAddr is the parsed form of an address string. Values are
// built once per call and never mutated afterwards.
type netAddr struct {
	family   int
	socktype int
	node     string
	service  string
}

// parseAddr parses an address string. Parsing is pure: no I/O and
// no name resolution happens here.
func parseAddr(s string) (*netAddr, error) {
	typ, rest, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	na := &netAddr{}
	if na.family, na.socktype, ok = lookupType(typ); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	var haveService bool
	if strings.HasPrefix(rest, "[") {
		// Bracketed IPv6 literal, possibly with a %zone suffix
		// which is kept verbatim in the node.
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		na.node = rest[1:end]
		rest = rest[end+1:]
		if !strings.HasPrefix(rest, ":") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		na.service = rest[1:]
		haveService = true

		switch na.family {
		case unix.AF_UNSPEC:
			na.family = unix.AF_INET6
		case unix.AF_INET6:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
	} else {
		na.node, na.service, haveService = strings.Cut(rest, ":")
	}

	if len(na.node) > maxNodeLen {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	if na.family == unix.AF_UNIX {
		// The socket node path is mandatory and a service may
		// not be given.
		if na.node == "" || na.service != "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		return na, nil
	}

	// IP addresses require a service; the rest of the string is
	// taken verbatim.
	if !haveService {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if len(na.service) > maxServiceLen {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return na, nil
}
