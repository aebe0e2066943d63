// Copyright (c) 2024–2026 The znb developers. All rights reserved.
// Project site: https://github.com/gotmc/znb
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package tcpip provides the raw socket transport used to reach a VNA over
// ethernet, normally on the instrument's SCPI port 5025.
package tcpip

import (
	"fmt"
	"net"
	"time"
)

// Conn is a TCP connection to an instrument's raw SCPI socket. A nonzero
// timeout bounds every subsequent Read and Write.
type Conn struct {
	conn    net.Conn
	timeout time.Duration
}

// New dials the instrument's socket endpoint given as host:port.
func New(endpoint string) (*Conn, error) {
	c, err := net.Dial("tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("error dialing %s: %w", endpoint, err)
	}
	return &Conn{conn: c}, nil
}

// SetTimeout bounds each following Read and Write to d. A zero d removes
// the bound.
func (c *Conn) SetTimeout(d time.Duration) error {
	c.timeout = d
	if d == 0 {
		return c.conn.SetDeadline(time.Time{})
	}
	return nil
}

// Read reads from the socket, honoring the configured timeout.
func (c *Conn) Read(p []byte) (n int, err error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.conn.Read(p)
}

// Write writes to the socket, honoring the configured timeout.
func (c *Conn) Write(p []byte) (n int, err error) {
	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.conn.Write(p)
}

// Close closes the socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}
