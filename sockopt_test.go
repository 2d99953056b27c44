// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"testing"

	"golang.org/x/sys/unix"
)

func getOpt(t *testing.T, fd, opt int) int {
	t.Helper()
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, opt)
	if err != nil {
		t.Fatalf("getsockopt: %v", err)
	}
	return v
}

func TestApplyFlagsIdempotent(t *testing.T) {
	na := &netAddr{family: unix.AF_INET, socktype: unix.SOCK_DGRAM}
	fd, err := sysSocket(unix.AF_INET, unix.SOCK_DGRAM, 0, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	defer unix.Close(fd)

	flags := Broadcast | ReuseAddr
	if err := applyFlags(fd, na, flags); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	broadcast := getOpt(t, fd, unix.SO_BROADCAST)
	reuseaddr := getOpt(t, fd, unix.SO_REUSEADDR)
	if broadcast == 0 || reuseaddr == 0 {
		t.Fatalf("options not applied: broadcast=%d reuseaddr=%d", broadcast, reuseaddr)
	}

	// Applying the same flags again leaves the state unchanged.
	if err := applyFlags(fd, na, flags); err != nil {
		t.Fatalf("applyFlags (second time): %v", err)
	}
	if v := getOpt(t, fd, unix.SO_BROADCAST); v != broadcast {
		t.Errorf("SO_BROADCAST changed from %d to %d", broadcast, v)
	}
	if v := getOpt(t, fd, unix.SO_REUSEADDR); v != reuseaddr {
		t.Errorf("SO_REUSEADDR changed from %d to %d", reuseaddr, v)
	}
}

func TestFlagScopes(t *testing.T) {
	// KeepAlive is for IP stream sockets; on a datagram socket it
	// is ignored, not an error.
	na := &netAddr{family: unix.AF_INET, socktype: unix.SOCK_DGRAM}
	fd, err := sysSocket(unix.AF_INET, unix.SOCK_DGRAM, 0, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	defer unix.Close(fd)

	if err := applyFlags(fd, na, KeepAlive); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if v := getOpt(t, fd, unix.SO_KEEPALIVE); v != 0 {
		t.Errorf("SO_KEEPALIVE set on a datagram socket")
	}

	// Broadcast is for IP datagram sockets; on a stream socket it
	// is ignored.
	sna := &netAddr{family: unix.AF_INET, socktype: unix.SOCK_STREAM}
	sfd, err := sysSocket(unix.AF_INET, unix.SOCK_STREAM, 0, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	defer unix.Close(sfd)

	if err := applyFlags(sfd, sna, Broadcast|KeepAlive); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if v := getOpt(t, sfd, unix.SO_BROADCAST); v != 0 {
		t.Errorf("SO_BROADCAST set on a stream socket")
	}
	if v := getOpt(t, sfd, unix.SO_KEEPALIVE); v == 0 {
		t.Errorf("SO_KEEPALIVE not set on a stream socket")
	}

	// Unix-only flags are ignored on IP sockets.
	if err := applyFlags(sfd, sna, PassCred|PassSec); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
}
