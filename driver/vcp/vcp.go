// Copyright (c) 2024–2026 The znb developers. All rights reserved.
// Project site: https://github.com/gotmc/znb
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package vcp provides a serial Virtual COM Port (VCP) transport for
// instruments wired over USB or RS-232 instead of ethernet.
package vcp

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port wraps a serial port as an instrument transport.
type Port struct {
	port serial.Port
}

// New opens the named serial port with 115200 baud 8N1 settings.
func New(device string) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %s: %w", device, err)
	}
	return &Port{port: p}, nil
}

// SetTimeout bounds each following blocking Read to d.
func (p *Port) SetTimeout(d time.Duration) error {
	return p.port.SetReadTimeout(d)
}

// Read reads from the serial port.
func (p *Port) Read(b []byte) (n int, err error) {
	return p.port.Read(b)
}

// Write writes to the serial port.
func (p *Port) Write(b []byte) (n int, err error) {
	return p.port.Write(b)
}

// Flush discards unread input buffered by the OS.
func (p *Port) Flush() error {
	return p.port.ResetInputBuffer()
}

// Close closes the serial port.
func (p *Port) Close() error {
	return p.port.Close()
}
