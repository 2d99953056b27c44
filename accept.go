// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

// Accept retrieves the next pending connection on a listening
// descriptor. The new descriptor has the non-blocking and
// close-on-exec defaults applied (or suppressed, per flag) before it
// is handed to the caller.
//
// raddr is the peer's address in the textual form accepted by Dial,
// rendered numerically. If the peer address cannot be formatted the
// accept still succeeds and raddr is empty.
func Accept(fd int, flag Flag) (nfd int, raddr string, err error) {
	nfd, sa, err := sysAccept(fd, flag)
	if err != nil {
		return -1, "", err
	}

	if s, err := formatSockaddr(nfd, sa); err == nil {
		raddr = s
	}
	return nfd, raddr, nil
}
