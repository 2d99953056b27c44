// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package logwriter

import (
	"errors"
	"io"
	"log/syslog"
	"os"
	"strings"

	systemdJournal "github.com/coreos/go-systemd/journal"
	"github.com/rs/zerolog"
	zerologJournald "github.com/rs/zerolog/journald"
)

// ErrJournaldUnavailable is returned when the systemd journal cannot
// be written to (e.g. because the system does not use systemd).
var ErrJournaldUnavailable = errors.New("cannot connect to systemd journal socket")

// Writer returns an io.Writer that writes log records to the
// specified location.
//
// Supported addresses are:
// - "stdout" or "stderr", to write to one of the standard streams;
// - "journald", to write directly to the systemd journal;
// - a `network:address` pair, to write to a syslog daemon.
func Writer(address, tag string) (io.Writer, error) {
	switch address {
	case "stderr":
		return zerolog.ConsoleWriter{Out: os.Stderr}, nil
	case "stdout":
		return zerolog.ConsoleWriter{Out: os.Stdout}, nil
	case "journald":
		if !systemdJournal.Enabled() {
			return nil, ErrJournaldUnavailable
		}
		return zerologJournald.NewJournalDWriter(), nil
	default:
		network, addr, ok := strings.Cut(address, ":")
		if !ok {
			return nil, errors.New("logwriter: no separator between network and address")
		}

		syslogWriter, err := syslog.Dial(network, addr, syslog.LOG_DAEMON, tag)
		if err != nil {
			return nil, err
		}

		return zerolog.SyslogCEEWriter(syslogWriter), nil
	}
}
