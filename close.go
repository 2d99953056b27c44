// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// A CloseMode selects between a full close and the half-close
// variants of Close.
type CloseMode int

const (
	// CloseFull closes the descriptor.
	CloseFull CloseMode = 0
	// CloseRead shuts down the reading side, leaving the
	// descriptor open.
	CloseRead CloseMode = 1 << 1
	// CloseWrite shuts down the writing side, leaving the
	// descriptor open.
	CloseWrite CloseMode = 1 << 2
	// CloseReadWrite shuts down both sides, leaving the
	// descriptor open.
	CloseReadWrite = CloseRead | CloseWrite
)

// Close shuts down or closes a descriptor. When fully closing a
// listening Unix-domain socket, the backing filesystem node is
// removed after the descriptor is closed; a removal failure is
// reported, but the close itself has already happened and is not
// undone.
func Close(fd int, mode CloseMode) error {
	switch mode & CloseReadWrite {
	case CloseRead:
		return os.NewSyscallError("shutdown", unix.Shutdown(fd, unix.SHUT_RD))
	case CloseWrite:
		return os.NewSyscallError("shutdown", unix.Shutdown(fd, unix.SHUT_WR))
	case CloseReadWrite:
		return os.NewSyscallError("shutdown", unix.Shutdown(fd, unix.SHUT_RDWR))
	}

	listening, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ACCEPTCONN)
	if err != nil {
		return os.NewSyscallError("getsockopt", err)
	}

	// Capture the bound address before closing; afterwards the
	// descriptor can no longer be queried.
	var path string
	if listening != 0 {
		sa, err := unix.Getsockname(fd)
		if err != nil {
			return os.NewSyscallError("getsockname", err)
		}
		if sa, ok := sa.(*unix.SockaddrUnix); ok {
			path = sa.Name
		}
	}

	if err := unix.Close(fd); err != nil {
		return os.NewSyscallError("close", err)
	}

	// Abstract-namespace names have no filesystem node to remove.
	if path != "" && !strings.HasPrefix(path, "@") {
		return os.Remove(path)
	}
	return nil
}
