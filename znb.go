// Copyright (c) 2024–2026 The znb developers. All rights reserved.
// Project site: https://github.com/gotmc/znb
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package znb controls a Rohde & Schwarz ZNB/ZNA-family vector network
// analyzer speaking SCPI over a VISA-style transport, typically the
// instrument's raw TCP socket on port 5025.
package znb

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gotmc/query"
	"go.uber.org/multierr"
)

// Name identifies the instrument family handled by this driver.
const Name = "rs.vna.znb"

// Instrument limits shared by the ZNB/ZNA family.
const (
	DefaultChannel         = 1
	MinBandwidthResolution = 1       // Hz
	MaxBandwidthResolution = 1000000 // Hz
)

// Config holds the connection configuration for a VNA session. It is fixed
// for the lifetime of the session; start from DefaultConfig.
type Config struct {
	Timeout          int    // transport timeout in milliseconds
	WriteTermination string // appended to every outgoing command
	ReadTermination  string // stripped from every incoming reply
}

// DefaultConfig returns the configuration the ZNB ships with: a 1000 ms
// timeout and newline termination in both directions.
func DefaultConfig() Config {
	return Config{
		Timeout:          1000,
		WriteTermination: "\n",
		ReadTermination:  "\n",
	}
}

// VNA models one exclusively owned instrument session. All methods are
// synchronous and blocking; the VNA is not safe for concurrent use.
type VNA struct {
	rw     io.ReadWriter
	br     *bufio.Reader
	cfg    Config
	idn    string
	logger *log.Logger
	debug  bool // if true, log commands and responses. Set via WithDebug().
}

// Option applies an option to the VNA.
type Option func(*VNA)

// WithLogger routes the driver's diagnostics to the given logger instead of
// the process-default one.
func WithLogger(l *log.Logger) Option { return func(v *VNA) { v.logger = l } }

// WithDebug causes commands and responses to be logged.
func WithDebug() Option { return func(v *VNA) { v.debug = true } }

// timeoutSetter is implemented by the transports under driver/.
type timeoutSetter interface {
	SetTimeout(d time.Duration) error
}

// New creates a VNA session on an open transport and runs the connect
// handshake: clear the instrument status, read the identification string,
// and switch the response data format to ASCII. Any failure during the
// handshake surfaces as a connection error.
func New(rw io.ReadWriter, cfg Config, opts ...Option) (*VNA, error) {
	if cfg.WriteTermination == "" || cfg.ReadTermination == "" {
		return nil, fmt.Errorf("config must set both line terminations")
	}
	v := &VNA{
		rw:     rw,
		br:     bufio.NewReader(rw),
		cfg:    cfg,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if ts, ok := rw.(timeoutSetter); ok {
		if err := ts.SetTimeout(time.Duration(cfg.Timeout) * time.Millisecond); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}
	if err := v.Command("*CLS"); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	idn, err := v.Query("*IDN?")
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	v.idn = strings.TrimSpace(idn)
	if err := v.Command("FORMat:DATA ASCii"); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	v.logf("connection established: %s", v.idn)
	return v, nil
}

// Close releases the transport session when the transport supports closing.
// Idempotence is the caller's responsibility; a second Close closes the
// transport again.
func (v *VNA) Close() error {
	if c, ok := v.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Identification returns the *IDN? string captured during the connect
// handshake.
func (v *VNA) Identification() string { return v.idn }

// Write writes raw bytes to the instrument.
func (v *VNA) Write(p []byte) (n int, err error) {
	return v.rw.Write(p)
}

// Read reads raw bytes from the instrument.
func (v *VNA) Read(p []byte) (n int, err error) {
	return v.br.Read(p)
}

// WriteString writes a string to the instrument, appending the configured
// write termination.
func (v *VNA) WriteString(s string) (n int, err error) {
	return fmt.Fprintf(v.rw, "%s%s", strings.TrimSpace(s), v.cfg.WriteTermination)
}

// Command formats according to a format specifier if provided and sends the
// SCPI command to the instrument, then polls the status byte. A nonzero
// status surfaces as a *CommandError naming the command; the instrument's
// pending error-queue entry is logged and the status cleared.
func (v *VNA) Command(format string, a ...any) error {
	cmd := format
	if a != nil {
		cmd = fmt.Sprintf(format, a...)
	}
	if err := v.send(cmd); err != nil {
		return err
	}
	bad, err := v.errorStatus()
	if bad {
		return multierr.Append(&CommandError{Cmd: strings.TrimSpace(cmd)}, err)
	}
	return err
}

// Query sends the given SCPI query and returns the single-line reply with
// the read termination stripped. Unlike Command, a query is not followed by
// a status-byte check.
func (v *VNA) Query(cmd string) (string, error) {
	if err := v.send(cmd); err != nil {
		return "", fmt.Errorf("error writing query: %w", err)
	}
	term := v.cfg.ReadTermination
	s, err := v.br.ReadString(term[len(term)-1])
	if err != nil && err != io.EOF {
		return "", err
	}
	s = strings.TrimSuffix(s, term)
	if v.debug {
		v.logf("query %q: %q", cmd, s)
	}
	return s, nil
}

// Reset restores the instrument's factory default setup.
func (v *VNA) Reset() error {
	return v.Command("*RST")
}

// send transmits one command line without checking the status byte
// afterward. The error-status path uses it directly to avoid recursing
// through Command.
func (v *VNA) send(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if v.debug {
		v.logf("cmd %q", cmd)
	}
	_, err := fmt.Fprintf(v.rw, "%s%s", cmd, v.cfg.WriteTermination)
	return err
}

// errorStatus polls the instrument's status byte. On a nonzero status it
// queries the next pending entry in the error queue for diagnostics and then
// clears the status unconditionally.
func (v *VNA) errorStatus() (bool, error) {
	stb, err := query.Int(v, "*STB?")
	if err != nil {
		return false, fmt.Errorf("error querying status byte: %w", err)
	}
	if stb == 0 {
		return false, nil
	}
	msg, qerr := v.Query("SYSTem:ERRor:NEXT?")
	if qerr == nil {
		v.logf("command failure: %s", strings.TrimSpace(msg))
	}
	return true, multierr.Append(qerr, v.send("*CLS"))
}

func (v *VNA) logf(format string, a ...any) {
	v.logger.Printf(format, a...)
}

// CommandError reports a command the instrument rejected, signaled by a
// nonzero status byte after the write.
type CommandError struct {
	Cmd string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed: %s", e.Cmd)
}
