// Copyright (c) 2024–2026 The znb developers. All rights reserved.
// Project site: https://github.com/gotmc/znb
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package znb

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// Format selects the representation returned for trace data. Phases are
// always in radians.
type Format string

// Trace data formats understood by TraceData and Traces. Matching is
// case-insensitive.
const (
	RealImag Format = "real-imag" // (real, imaginary)
	DBPhase  Format = "db-phase"  // (20·log10|z|, phase)
	AmpPhase Format = "amp-phase" // (|z|², phase)
)

func (f Format) valid() bool {
	switch Format(strings.ToLower(string(f))) {
	case RealImag, DBPhase, AmpPhase:
		return true
	}
	return false
}

// TraceData holds the two series derived from one trace: (real, imaginary),
// (dB, phase), or (power, phase) depending on the requested Format. Both
// series have one entry per frequency point.
type TraceData struct {
	A, B []float64
}

// TraceData selects the named trace, fetches its complex measurement data
// with CALCulate:DATa? Sdata, and returns it converted to the requested
// format. An unrecognized format is rejected before any instrument I/O.
func (v *VNA) TraceData(trace string, format Format) (TraceData, error) {
	if !format.valid() {
		return TraceData{}, fmt.Errorf(
			"invalid trace data format %q; must be %q, %q, or %q",
			format, RealImag, DBPhase, AmpPhase,
		)
	}
	if err := v.Command("CALC:PARameter:SEL %q", trace); err != nil {
		return TraceData{}, err
	}
	raw, err := v.Query("CALCulate:DATa? Sdata")
	if err != nil {
		return TraceData{}, err
	}
	samples, err := parseSdata(raw)
	if err != nil {
		return TraceData{}, err
	}
	return v.convert(samples, format), nil
}

// Traces fetches the named traces in order, each converted to the requested
// format.
func (v *VNA) Traces(traces []string, format Format) ([]TraceData, error) {
	data := make([]TraceData, 0, len(traces))
	for _, trace := range traces {
		td, err := v.TraceData(trace, format)
		if err != nil {
			return nil, fmt.Errorf("trace %q: %w", trace, err)
		}
		data = append(data, td)
	}
	return data, nil
}

// parseSdata parses the comma-separated Sdata payload into complex samples.
// The instrument interleaves real and imaginary parts, so the value count
// must be even.
func parseSdata(raw string) ([]complex128, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty trace data reply")
	}
	fields := strings.Split(raw, ",")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("trace data has odd value count %d", len(fields))
	}
	samples := make([]complex128, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		re, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad trace value %q: %w", fields[i], err)
		}
		im, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad trace value %q: %w", fields[i+1], err)
		}
		samples = append(samples, complex(re, im))
	}
	return samples, nil
}

// convert derives the two output series from the complex samples. An
// all-zero trace would put -Inf in every magnitude bin, so that degenerate
// case is logged and replaced with a unity primary channel and a zero phase
// channel.
func (v *VNA) convert(samples []complex128, format Format) TraceData {
	td := TraceData{
		A: make([]float64, len(samples)),
		B: make([]float64, len(samples)),
	}
	switch Format(strings.ToLower(string(format))) {
	case RealImag:
		for i, z := range samples {
			td.A[i] = real(z)
			td.B[i] = imag(z)
		}
	case DBPhase:
		if allZero(samples) {
			v.logf("division by zero converting trace to db-phase; returning unity trace")
			fill(td.A, 1)
			return td
		}
		for i, z := range samples {
			td.A[i] = 20 * math.Log10(cmplx.Abs(z))
			td.B[i] = cmplx.Phase(z)
		}
	case AmpPhase:
		if allZero(samples) {
			v.logf("division by zero converting trace to amp-phase; returning unity trace")
			fill(td.A, 1)
			return td
		}
		for i, z := range samples {
			a := cmplx.Abs(z)
			td.A[i] = a * a
			td.B[i] = cmplx.Phase(z)
		}
	}
	return td
}

func allZero(samples []complex128) bool {
	for _, z := range samples {
		if z != 0 {
			return false
		}
	}
	return len(samples) > 0
}

func fill(s []float64, val float64) {
	for i := range s {
		s[i] = val
	}
}
