// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

// Package netdial creates sockets from compact textual address
// descriptors and turns live socket endpoints back into the same
// textual form.
//
// Addresses have the form `<type>:<node>[:<service>]`, where <type>
// selects the address family and connection kind:
//
//	tcp, udp     IP, stream or datagram, version picked at resolution
//	tcp4, udp4   IPv4 only
//	tcp6, udp6   IPv6 only
//	unix         Unix-domain stream socket
//	unixp        Unix-domain sequenced-packet socket
//
// For IP types <node> is a host name, a numeric address, or a
// bracketed IPv6 literal (optionally with a `%zone` suffix), and
// <service> is a port number or service name. An empty <node> means
// "any address": the wildcard address when announcing, the loopback
// address when dialing. For Unix-domain types <node> is the path to
// the socket node and <service> must be empty.
//
// Descriptors are plain file descriptors. They are created
// non-blocking and close-on-exec unless the Blocking or KeepExec
// flags are passed; multiplexing them is the caller's job.
package netdial

import (
	"os"

	"golang.org/x/sys/unix"
)

// A Flag adjusts how descriptors are created and configured.
//
// Blocking and KeepExec suppress creation-time defaults. The
// remaining flags each enable a socket option on the new descriptor;
// flags that do not apply to the address family (or that name an
// option this build does not support) are silently ignored.
type Flag int

const (
	// Blocking leaves the descriptor in blocking mode instead of
	// the non-blocking default.
	Blocking Flag = 1 << iota
	// KeepExec leaves the descriptor open across exec instead of
	// the close-on-exec default.
	KeepExec
	// Debug enables SO_DEBUG.
	Debug
	// KeepAlive enables SO_KEEPALIVE. IP stream sockets only.
	KeepAlive
	// ReuseAddr enables SO_REUSEADDR.
	ReuseAddr
	// ReusePort enables SO_REUSEPORT.
	ReusePort
	// Broadcast enables SO_BROADCAST. IP datagram sockets only.
	Broadcast
	// PassCred enables SO_PASSCRED. Unix-domain sockets only.
	PassCred
	// PassSec enables SO_PASSSEC. Unix-domain sockets only.
	PassSec
)

// Default queue depth used by Announce when the caller passes a
// non-positive backlog.
const defaultBacklog = 5

// Dial connects to the given address and returns the descriptor of
// the connected socket.
func Dial(address string, flag Flag) (int, error) {
	na, err := parseAddr(address)
	if err != nil {
		return -1, err
	}

	fd, err := newSocket(na, flag, false)
	if err != nil {
		return -1, err
	}

	if err := applyFlags(fd, na, flag); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// Announce binds a listening socket to the given address and returns
// its descriptor. A non-positive backlog selects a default queue
// depth.
func Announce(address string, flag Flag, backlog int) (int, error) {
	na, err := parseAddr(address)
	if err != nil {
		return -1, err
	}

	fd, err := newSocket(na, flag, true)
	if err != nil {
		return -1, err
	}

	if err := applyFlags(fd, na, flag); err != nil {
		unix.Close(fd)
		return -1, err
	}

	// Datagram sockets are connectionless; for them announcing
	// ends at the bind.
	if na.socktype != unix.SOCK_DGRAM {
		if backlog <= 0 {
			backlog = defaultBacklog
		}
		if err := unix.Listen(fd, backlog); err != nil {
			unix.Close(fd)
			return -1, os.NewSyscallError("listen", err)
		}
	}
	return fd, nil
}
