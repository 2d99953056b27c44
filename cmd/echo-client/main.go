// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

// Command echo-client dials a netdial address and plays lines from
// standard input against the remote echo service in lockstep.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/aperezdc/netdial"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sean-/sysexits"
)

var cli struct {
	Address string `arg:"" help:"Address to dial, e.g. tcp:localhost:echo." placeholder:"ADDRESS"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("echo-client"),
		kong.Description("Sends standard input to an echo service and prints the replies."))

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fd, err := netdial.Dial(cli.Address, netdial.Blocking)
	if err != nil {
		log.Error().Err(err).Str("address", cli.Address).Msg("cannot dial")
		os.Exit(sysexits.Unavailable)
	}
	conn := os.NewFile(uintptr(fd), cli.Address)
	defer conn.Close()

	// One chunk out, one chunk back, until stdin runs dry.
	buf := make([]byte, 512)
	for {
		n, err := os.Stdin.Read(buf)
		if n == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				log.Error().Err(err).Msg("read error")
				os.Exit(sysexits.IOErr)
			}
			break
		}
		if _, err := conn.Write(buf[:n]); err != nil {
			log.Error().Err(err).Msg("socket write error")
			os.Exit(sysexits.IOErr)
		}
		if n, err = conn.Read(buf); err != nil {
			log.Error().Err(err).Msg("socket read error")
			os.Exit(sysexits.IOErr)
		}
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			log.Error().Err(err).Msg("write error")
			os.Exit(sysexits.IOErr)
		}
	}

	netdial.Close(fd, netdial.CloseFull)
}
