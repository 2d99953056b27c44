// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

//go:build linux || dragonfly || freebsd || netbsd || openbsd

package netdial

import (
	"os"

	"golang.org/x/sys/unix"
)

// sockFlags translates the inverted-polarity descriptor flags into
// the SOCK_* bits accepted by socket(2) and accept4(2).
func sockFlags(flag Flag) int {
	var sf int
	if flag&Blocking == 0 {
		sf |= unix.SOCK_NONBLOCK
	}
	if flag&KeepExec == 0 {
		sf |= unix.SOCK_CLOEXEC
	}
	return sf
}

// sysSocket creates a socket with the non-blocking and close-on-exec
// state applied atomically at creation time.
func sysSocket(family, socktype, proto int, flag Flag) (int, error) {
	fd, err := unix.Socket(family, socktype|sockFlags(flag), proto)
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	return fd, nil
}

// sysAccept retrieves the next pending connection with the requested
// descriptor state applied atomically by accept4(2).
func sysAccept(fd int, flag Flag) (int, unix.Sockaddr, error) {
	nfd, sa, err := unix.Accept4(fd, sockFlags(flag))
	if err != nil {
		return -1, nil, os.NewSyscallError("accept4", err)
	}
	return nfd, sa, nil
}
