// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"os"

	"golang.org/x/sys/unix"
)

// Scope tags restricting which sockets a flag's option applies to.
// Without a kind bit the option applies to every socket kind.
const (
	scopeInet = 1 << iota // IPv4 and IPv6
	scopeUnix             // Unix-domain
	scopeStream           // stream sockets only
	scopeDgram            // datagram sockets only
)

type sockOpt struct {
	flag  Flag
	scope int
	level int
	opt   int
}

// sockOpts maps option flags to socket options. An opt of zero marks
// an option this build has no value for; such flags are skipped
// rather than failing the operation. Read-only after initialization.
var sockOpts = []sockOpt{
	{Debug, scopeInet | scopeUnix, unix.SOL_SOCKET, unix.SO_DEBUG},
	{KeepAlive, scopeInet | scopeStream, unix.SOL_SOCKET, unix.SO_KEEPALIVE},
	{ReuseAddr, scopeInet | scopeUnix, unix.SOL_SOCKET, unix.SO_REUSEADDR},
	{ReusePort, scopeInet | scopeUnix, unix.SOL_SOCKET, unix.SO_REUSEPORT},
	{Broadcast, scopeInet | scopeDgram, unix.SOL_SOCKET, unix.SO_BROADCAST},
	{PassCred, scopeUnix, unix.SOL_SOCKET, soPassCred},
	{PassSec, scopeUnix, unix.SOL_SOCKET, soPassSec},
}

func (o *sockOpt) applies(na *netAddr) bool {
	if na.family == unix.AF_UNIX {
		if o.scope&scopeUnix == 0 {
			return false
		}
	} else if o.scope&scopeInet == 0 {
		return false
	}
	switch {
	case o.scope&scopeStream != 0:
		return na.socktype == unix.SOCK_STREAM
	case o.scope&scopeDgram != 0:
		return na.socktype == unix.SOCK_DGRAM
	}
	return true
}

// applyFlags sets every socket option whose flag is present and
// whose scope matches the descriptor. Application is idempotent.
// On failure the descriptor is left open for the caller to close.
func applyFlags(fd int, na *netAddr, flag Flag) error {
	for i := range sockOpts {
		o := &sockOpts[i]
		if flag&o.flag == 0 || !o.applies(na) {
			continue
		}
		if o.opt == 0 {
			// Unsupported in this build.
			continue
		}
		if err := unix.SetsockoptInt(fd, o.level, o.opt, 1); err != nil {
			return os.NewSyscallError("setsockopt", err)
		}
	}
	return nil
}
