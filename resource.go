// Copyright (c) 2024–2026 The znb developers. All rights reserved.
// Project site: https://github.com/gotmc/znb
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package znb

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/gotmc/znb/driver/tcpip"
	"github.com/gotmc/znb/driver/vcp"
)

// Dial opens the transport named by a VISA resource string and connects to
// the instrument behind it. Supported forms:
//
//	TCPIP::192.168.29.103::5025::SOCKET
//	ASRL::/dev/ttyUSB0::INSTR
//	192.168.29.103:5025
//
// An optional VISA board index (TCPIP0, ASRL1) is accepted and ignored. The
// HiSLIP and VXI-11 INSTR forms require a resource manager and are not
// supported.
func Dial(address string, cfg Config, opts ...Option) (*VNA, error) {
	rsrc, err := parseResource(address)
	if err != nil {
		return nil, err
	}
	var rw io.ReadWriter
	switch rsrc.class {
	case classTCPIP:
		rw, err = tcpip.New(rsrc.endpoint)
	case classASRL:
		rw, err = vcp.New(rsrc.endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return New(rw, cfg, opts...)
}

type resourceClass int

const (
	classTCPIP resourceClass = iota
	classASRL
)

type resource struct {
	class    resourceClass
	endpoint string // host:port for TCPIP, device path for ASRL
}

// parseResource understands the subset of VISA resource syntax the ZNB is
// reachable through. A bare host:port is treated as a raw socket endpoint.
func parseResource(address string) (resource, error) {
	if !strings.Contains(address, "::") {
		if _, _, err := net.SplitHostPort(address); err != nil {
			return resource{}, fmt.Errorf("invalid resource %q: %w", address, err)
		}
		return resource{class: classTCPIP, endpoint: address}, nil
	}
	parts := strings.Split(address, "::")
	class := strings.ToUpper(strings.TrimRight(parts[0], "0123456789"))
	switch class {
	case "TCPIP":
		if len(parts) != 4 || !strings.EqualFold(parts[3], "SOCKET") {
			return resource{}, fmt.Errorf(
				"invalid resource %q: want TCPIP::host::port::SOCKET", address)
		}
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return resource{}, fmt.Errorf("invalid resource %q: bad port %q", address, parts[2])
		}
		return resource{class: classTCPIP, endpoint: net.JoinHostPort(parts[1], parts[2])}, nil
	case "ASRL":
		if len(parts) != 3 || !strings.EqualFold(parts[2], "INSTR") {
			return resource{}, fmt.Errorf(
				"invalid resource %q: want ASRL::device::INSTR", address)
		}
		return resource{class: classASRL, endpoint: parts[1]}, nil
	}
	return resource{}, fmt.Errorf("unsupported resource class %q", parts[0])
}
