// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

//go:build darwin

package netdial

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// No SOCK_NONBLOCK/SOCK_CLOEXEC and no accept4 here, so descriptor
// flags are adjusted right after creation. For accept this is a
// narrower non-atomic window rather than a correctness problem: no
// other goroutine owns the new descriptor yet.

func sysSocket(family, socktype, proto int, flag Flag) (int, error) {
	syscall.ForkLock.RLock()
	fd, err := unix.Socket(family, socktype, proto)
	if err == nil && flag&KeepExec == 0 {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	return fd, setDescriptorFlags(fd, flag)
}

func sysAccept(fd int, flag Flag) (int, unix.Sockaddr, error) {
	syscall.ForkLock.RLock()
	nfd, sa, err := unix.Accept(fd)
	if err == nil && flag&KeepExec == 0 {
		unix.CloseOnExec(nfd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, nil, os.NewSyscallError("accept", err)
	}
	if err := setDescriptorFlags(nfd, flag); err != nil {
		return -1, nil, err
	}
	return nfd, sa, nil
}

func setDescriptorFlags(fd int, flag Flag) error {
	if err := unix.SetNonblock(fd, flag&Blocking == 0); err != nil {
		unix.Close(fd)
		return os.NewSyscallError("fcntl", err)
	}
	return nil
}
