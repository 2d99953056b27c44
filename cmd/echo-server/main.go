// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

// Command echo-server accepts connections on a netdial address and
// echoes whatever the peers send, one goroutine per connection.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/aperezdc/netdial"
	"github.com/aperezdc/netdial/internal/listeners"
	"github.com/aperezdc/netdial/internal/logwriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sean-/sysexits"
	"golang.org/x/sys/unix"
)

var cli struct {
	Listen   string `arg:"" optional:"" default:"tcp:localhost:7777" help:"Address to listen on." placeholder:"ADDRESS"`
	Backlog  int    `help:"Listen queue depth (0 selects the default)." placeholder:"N"`
	LogLevel string `env:"ECHO_LOG_LEVEL" default:"info" help:"Minimum level of logged messages." placeholder:"LEVEL"`
	LogTo    string `env:"ECHO_LOG_TO" default:"stderr" help:"Where to write log messages to." placeholder:"ADDRESS"`
}

func main() {
	parser := kong.Parse(&cli,
		kong.Name("echo-server"),
		kong.Description("Echoes data sent by connecting peers."))

	logLevel, err := zerolog.ParseLevel(cli.LogLevel)
	if err != nil {
		parser.Errorf("invalid log level %q", cli.LogLevel)
		os.Exit(sysexits.Usage)
	}
	w, err := logwriter.Writer(cli.LogTo, "echo-server")
	if err != nil {
		parser.Errorf("could not open log destination: %v", err)
		os.Exit(sysexits.Unavailable)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(logLevel)

	lfd, err := listeners.Descriptor(cli.Listen, netdial.Blocking, cli.Backlog)
	if err != nil {
		log.Error().Err(err).Str("address", cli.Listen).Msg("could not create listening socket")
		if errors.Is(err, netdial.ErrInvalidAddress) {
			os.Exit(sysexits.Usage)
		}
		os.Exit(sysexits.Unavailable)
	}
	if laddr, err := netdial.Address(lfd, netdial.Local); err == nil {
		log.Info().Str("address", laddr).Msg("listening")
	}

	for {
		fd, raddr, err := netdial.Accept(lfd, 0)
		if err != nil {
			log.Error().Err(err).Msg("accept failed")
			netdial.Close(lfd, netdial.CloseFull)
			os.Exit(sysexits.OSErr)
		}
		log.Info().Str("peer", raddr).Msg("accepted connection")
		go echo(fd, raddr)
	}
}

// echo copies a connection's input back to its peer until the peer
// hangs up. Accepted descriptors are non-blocking, so the copy
// drives the runtime poller rather than tying up a thread.
func echo(fd int, raddr string) {
	f := os.NewFile(uintptr(fd), raddr)
	defer f.Close()

	n, err := io.Copy(f, f)
	if err != nil && !errors.Is(err, unix.ECONNRESET) {
		log.Error().Err(err).Str("peer", raddr).Msg("connection error")
		return
	}
	log.Info().Str("peer", raddr).Int64("bytes", n).Msg("connection closed")
}
