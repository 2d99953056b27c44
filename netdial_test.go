// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

// listenTCP announces a blocking listener on an ephemeral loopback
// port and returns its descriptor and formatted local address.
func listenTCP(t *testing.T) (int, string) {
	t.Helper()
	lfd, err := Announce("tcp4:127.0.0.1:0", Blocking, 0)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}
	t.Cleanup(func() { unix.Close(lfd) })

	laddr, err := Address(lfd, Local)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	return lfd, laddr
}

func TestDialAcceptEcho(t *testing.T) {
	lfd, laddr := listenTCP(t)

	if !strings.HasPrefix(laddr, "tcp:127.0.0.1:") {
		t.Fatalf("unexpected listener address %q", laddr)
	}

	cfd, err := Dial(laddr, Blocking)
	if err != nil {
		t.Fatalf("Dial(%q): %v", laddr, err)
	}
	defer unix.Close(cfd)

	nfd, raddr, err := Accept(lfd, Blocking)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer unix.Close(nfd)

	// The peer address seen by the listener is the dialer's local
	// endpoint, in the same grammar.
	caddr, err := Address(cfd, Local)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if raddr != caddr {
		t.Errorf("accepted peer address %q, dialer local address %q", raddr, caddr)
	}

	msg := []byte("ping")
	if _, err := unix.Write(cfd, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 16)
	n, err := unix.Read(nfd, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != string(msg) {
		t.Errorf("read %q, want %q", buf[:n], msg)
	}
}

func TestDialInvalidAddress(t *testing.T) {
	if _, err := Dial("foo:bar", 0); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Dial(foo:bar): error %v does not wrap ErrInvalidAddress", err)
	}
	if _, err := Announce("unix:/x:svc", 0, 0); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Announce(unix:/x:svc): error %v does not wrap ErrInvalidAddress", err)
	}
}

func TestDefaultDescriptorFlags(t *testing.T) {
	lfd, _ := listenTCP(t)

	// No flags: non-blocking and close-on-exec.
	fd, err := Announce("tcp4:127.0.0.1:0", 0, 0)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}
	defer unix.Close(fd)

	fl, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		t.Fatalf("F_GETFL: %v", err)
	}
	if fl&unix.O_NONBLOCK == 0 {
		t.Error("descriptor created without flags is not non-blocking")
	}
	fdflags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		t.Fatalf("F_GETFD: %v", err)
	}
	if fdflags&unix.FD_CLOEXEC == 0 {
		t.Error("descriptor created without flags is not close-on-exec")
	}

	// Blocking|KeepExec suppress both defaults.
	laddr, err := Address(lfd, Local)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	bfd, err := Dial(laddr, Blocking|KeepExec)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer unix.Close(bfd)

	fl, err = unix.FcntlInt(uintptr(bfd), unix.F_GETFL, 0)
	if err != nil {
		t.Fatalf("F_GETFL: %v", err)
	}
	if fl&unix.O_NONBLOCK != 0 {
		t.Error("Blocking descriptor is non-blocking")
	}
	fdflags, err = unix.FcntlInt(uintptr(bfd), unix.F_GETFD, 0)
	if err != nil {
		t.Fatalf("F_GETFD: %v", err)
	}
	if fdflags&unix.FD_CLOEXEC != 0 {
		t.Error("KeepExec descriptor is close-on-exec")
	}
}

func TestUnixLifecycle(t *testing.T) {
	dir, err := os.MkdirTemp("", "netdial")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "t.sock")

	lfd, err := Announce("unix:"+path, Blocking, 0)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}

	if fi, err := os.Stat(path); err != nil {
		t.Fatalf("socket node not created: %v", err)
	} else if fi.Mode()&os.ModeSocket == 0 {
		t.Fatalf("%q is not a socket", path)
	}

	laddr, err := Address(lfd, Local)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if laddr != "unix:"+path {
		t.Errorf("listener address %q, want %q", laddr, "unix:"+path)
	}

	cfd, err := Dial("unix:"+path, Blocking)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	nfd, _, err := Accept(lfd, Blocking)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	unix.Close(nfd)
	unix.Close(cfd)

	// Fully closing the listener removes the socket node.
	if err := Close(lfd, CloseFull); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("socket node still present after close: %v", err)
	}
}

func TestUnixPathTooLong(t *testing.T) {
	path := "/tmp/" + strings.Repeat("n", 200) + ".sock"
	if _, err := Dial("unix:"+path, 0); !errors.Is(err, unix.ERANGE) {
		t.Errorf("Dial with oversized path: error %v does not wrap ERANGE", err)
	}
}

func TestHalfClose(t *testing.T) {
	lfd, laddr := listenTCP(t)

	cfd, err := Dial(laddr, Blocking)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer unix.Close(cfd)
	nfd, _, err := Accept(lfd, Blocking)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer unix.Close(nfd)

	if err := Close(cfd, CloseWrite); err != nil {
		t.Fatalf("Close(CloseWrite): %v", err)
	}

	// The peer sees end-of-file; the descriptor stays usable for
	// writing back.
	buf := make([]byte, 1)
	if n, err := unix.Read(nfd, buf); err != nil || n != 0 {
		t.Errorf("read after peer half-close: n=%d err=%v, want EOF", n, err)
	}
	if _, err := unix.Write(nfd, []byte("x")); err != nil {
		t.Errorf("write after peer half-close: %v", err)
	}
	if n, err := unix.Read(cfd, buf); err != nil || n != 1 {
		t.Errorf("read on half-closed descriptor: n=%d err=%v", n, err)
	}
}

func TestWildcardAnnounce(t *testing.T) {
	fd, err := Announce("tcp::0", Blocking, 0)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}
	defer unix.Close(fd)

	laddr, err := Address(fd, Local)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	// Wildcard resolution prefers IPv6 and falls back to IPv4.
	if na, err := parseAddr(laddr); err != nil {
		t.Errorf("formatted address %q does not parse: %v", laddr, err)
	} else if na.node != "::" && na.node != "0.0.0.0" {
		t.Errorf("wildcard listener bound to %q", laddr)
	}
}

func TestAnnounceSeqpacket(t *testing.T) {
	dir, err := os.MkdirTemp("", "netdial")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "p.sock")

	lfd, err := Announce("unixp:"+path, Blocking, 0)
	if err != nil {
		t.Fatalf("Announce: %v", err)
	}

	laddr, err := Address(lfd, Local)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if laddr != "unixp:"+path {
		t.Errorf("listener address %q, want %q", laddr, "unixp:"+path)
	}
	if err := Close(lfd, CloseFull); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
