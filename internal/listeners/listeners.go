// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package listeners

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/aperezdc/netdial"
	systemd "github.com/coreos/go-systemd/activation"
)

// systemdSocketFiles contains the file descriptors sent through
// systemd's socket activation protocol (see man:sd_listen_fds(3)).
var systemdSocketFiles = systemd.Files(true)

// ErrNoSystemdSockets is returned when $LISTEN_PID does not match
// the current process or $LISTEN_FDS is 0, both meaning that no
// sockets were passed by systemd to this process.
var ErrNoSystemdSockets = errors.New("no sockets were passed by systemd to the current process")

// Descriptor returns a listening socket descriptor for an address.
//
// Besides the address forms accepted by netdial.Announce, the
// following are recognized:
// - `fd:$num` to use file descriptor `$num` as-is
// - `systemd:$name` to use a named file descriptor passed by systemd
//   (see sd_listen_fds_with_names(3))
// - `systemd:` (no name) to use the first file descriptor passed by
//   systemd, regardless of name
//
// Descriptors taken over from fd: and systemd: sources keep whatever
// blocking and close-on-exec state they were passed with.
func Descriptor(address string, flag netdial.Flag, backlog int) (int, error) {
	network, rest, ok := strings.Cut(address, ":")
	if !ok {
		return -1, fmt.Errorf("listeners: %w", netdial.ErrInvalidAddress)
	}

	switch network {
	default:
		return netdial.Announce(address, flag, backlog)
	case "fd":
		fd, err := strconv.ParseUint(rest, 10, 0)
		if err != nil {
			return -1, fmt.Errorf("listeners: could not parse file descriptor number: %w", err)
		}
		return int(fd), nil
	case "systemd":
		if len(systemdSocketFiles) == 0 {
			return -1, ErrNoSystemdSockets
		}
		if rest == "" {
			return int(systemdSocketFiles[0].Fd()), nil
		}
		for _, f := range systemdSocketFiles {
			if f.Name() == rest {
				return int(f.Fd()), nil
			}
		}
		return -1, &net.AddrError{Err: "systemd socket not found", Addr: rest}
	}
}
