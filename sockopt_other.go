// SPDX-FileCopyrightText: 2020 Adrian Perez de Castro <aperez@igalia.com>
//
// SPDX-License-Identifier: MIT

//go:build !linux

package netdial

// Credential and security-context passing are Linux-only.
const (
	soPassCred = 0
	soPassSec  = 0
)
