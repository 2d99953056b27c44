// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Size of sockaddr_un's path buffer; the platform does not reserve
// room for a terminator at maximal lengths.
var maxSunPath = len(unix.RawSockaddrUnix{}.Path)

// newSocket creates a descriptor for the parsed address and performs
// the role's primitive on it: bind when passive, connect otherwise.
// The returned descriptor still needs its option flags applied.
func newSocket(na *netAddr, flag Flag, passive bool) (int, error) {
	if na.family == unix.AF_UNIX {
		return unixSocket(na, flag, passive)
	}
	return inetSocket(na, flag, passive)
}

func unixSocket(na *netAddr, flag Flag, passive bool) (int, error) {
	if len(na.node) >= maxSunPath {
		return -1, fmt.Errorf("socket path %q: %w", na.node, unix.ERANGE)
	}
	sa := &unix.SockaddrUnix{Name: na.node}

	fd, err := sysSocket(unix.AF_UNIX, na.socktype, 0, flag)
	if err != nil {
		return -1, err
	}

	op, opname := unix.Connect, "connect"
	if passive {
		op, opname = unix.Bind, "bind"
	}
	if err := op(fd, sa); err != nil {
		unix.Close(fd)
		return -1, os.NewSyscallError(opname, err)
	}
	return fd, nil
}

func inetSocket(na *netAddr, flag Flag, passive bool) (int, error) {
	cs, err := na.candidates(passive)
	if err != nil {
		return -1, err
	}

	op, opname := unix.Connect, "connect"
	if passive {
		op, opname = unix.Bind, "bind"
	}

	// Try each resolved candidate once, in resolver order, and
	// keep the first descriptor that works.
	var lastErr error
	for _, c := range cs {
		fd, err := sysSocket(c.family, na.socktype, 0, flag)
		if err != nil {
			lastErr = err
			continue
		}
		if err := op(fd, c.sa); err != nil {
			unix.Close(fd)
			lastErr = os.NewSyscallError(opname, err)
			continue
		}
		return fd, nil
	}
	return -1, lastErr
}
