// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

package netdial

import "golang.org/x/sys/unix"

const (
	soPassCred = unix.SO_PASSCRED
	soPassSec  = unix.SO_PASSSEC
)
