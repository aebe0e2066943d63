// Copyright (c) 2024–2026 The znb developers. All rights reserved.
// Project site: https://github.com/gotmc/znb
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package znb

import (
	"math"
	"slices"
	"testing"
)

const tol = 1e-9

func approxEqual(got, want []float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func TestTraceDataRealImag(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "1.5,-2.25,3,4e-3,-0.5,0.125"
	v := mustConnect(t, f)

	td, err := v.TraceData("Trc1", RealImag)
	if err != nil {
		t.Fatalf("TraceData returned %s", err)
	}
	if want := []float64{1.5, 3, -0.5}; !slices.Equal(td.A, want) {
		t.Errorf("real = %v; want %v unchanged", td.A, want)
	}
	if want := []float64{-2.25, 4e-3, 0.125}; !slices.Equal(td.B, want) {
		t.Errorf("imag = %v; want %v unchanged", td.B, want)
	}
	if !slices.Contains(f.written, `CALC:PARameter:SEL "Trc1"`) {
		t.Errorf("trace selection not sent; wrote %v", f.written)
	}
}

func TestTraceDataDBPhase(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "1,0,0,1"
	v := mustConnect(t, f)

	td, err := v.TraceData("Trc1", DBPhase)
	if err != nil {
		t.Fatalf("TraceData returned %s", err)
	}
	// z1 = 1+0i -> 0 dB, 0 rad; z2 = 0+1i -> 0 dB, pi/2 rad.
	if want := []float64{0, 0}; !approxEqual(td.A, want) {
		t.Errorf("dB = %v; want %v", td.A, want)
	}
	if want := []float64{0, math.Pi / 2}; !approxEqual(td.B, want) {
		t.Errorf("phase = %v; want %v", td.B, want)
	}
}

func TestTraceDataAmpPhase(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "3,4"
	v := mustConnect(t, f)

	td, err := v.TraceData("Trc1", AmpPhase)
	if err != nil {
		t.Fatalf("TraceData returned %s", err)
	}
	if want := []float64{25}; !approxEqual(td.A, want) {
		t.Errorf("power = %v; want %v", td.A, want)
	}
	if want := []float64{math.Atan2(4, 3)}; !approxEqual(td.B, want) {
		t.Errorf("phase = %v; want %v", td.B, want)
	}
}

func TestTraceDataFormatCaseInsensitive(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "1,0"
	v := mustConnect(t, f)
	if _, err := v.TraceData("Trc1", "DB-Phase"); err != nil {
		t.Errorf("mixed-case format rejected: %s", err)
	}
}

func TestTraceDataInvalidFormat(t *testing.T) {
	f := newFakeInstrument()
	v := mustConnect(t, f)
	before := len(f.written)

	_, err := v.TraceData("Trc1", "bogus")
	if err == nil {
		t.Fatal("TraceData accepted format \"bogus\"")
	}
	if len(f.written) != before {
		t.Errorf("instrument I/O performed for invalid format: %v", f.written[before:])
	}
}

func TestTraceDataOddValueCount(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "1,2,3"
	v := mustConnect(t, f)
	if _, err := v.TraceData("Trc1", RealImag); err == nil {
		t.Error("TraceData accepted payload with odd value count")
	}
}

func TestTraceDataAllZero(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "0,0,0,0,0,0"
	v := mustConnect(t, f)

	for _, format := range []Format{DBPhase, AmpPhase} {
		td, err := v.TraceData("Trc1", format)
		if err != nil {
			t.Fatalf("%s: TraceData returned %s", format, err)
		}
		if want := []float64{1, 1, 1}; !slices.Equal(td.A, want) {
			t.Errorf("%s: fallback primary channel = %v; want %v", format, td.A, want)
		}
		if want := []float64{0, 0, 0}; !slices.Equal(td.B, want) {
			t.Errorf("%s: fallback phase channel = %v; want %v", format, td.B, want)
		}
	}
}

func TestTracesOrdered(t *testing.T) {
	f := newFakeInstrument()
	f.sdataByTrace = map[string]string{
		"Trc1": "1,0",
		"Trc2": "0,1",
	}
	v := mustConnect(t, f)

	data, err := v.Traces([]string{"Trc1", "Trc2"}, DBPhase)
	if err != nil {
		t.Fatalf("Traces returned %s", err)
	}
	if len(data) != 2 {
		t.Fatalf("got %d results; want 2", len(data))
	}
	if !approxEqual(data[0].B, []float64{0}) {
		t.Errorf("Trc1 phase = %v; want [0]", data[0].B)
	}
	if !approxEqual(data[1].B, []float64{math.Pi / 2}) {
		t.Errorf("Trc2 phase = %v; want [pi/2]", data[1].B)
	}
}

func TestTracesNamesFailure(t *testing.T) {
	f := newFakeInstrument()
	f.sdata = "1,2,3" // odd count, every fetch fails
	v := mustConnect(t, f)
	if _, err := v.Traces([]string{"Trc1"}, RealImag); err == nil {
		t.Error("Traces swallowed a per-trace failure")
	}
}

func TestParseSdata(t *testing.T) {
	tests := []struct {
		raw     string
		want    []complex128
		wantErr bool
	}{
		{"1,0,0,1", []complex128{1, 1i}, false},
		{" 1.5 , -2.5 ", []complex128{complex(1.5, -2.5)}, false},
		{"1,2,3", nil, true},
		{"", nil, true},
		{"a,b", nil, true},
	}
	for _, tt := range tests {
		got, err := parseSdata(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSdata(%q) error = %v; wantErr %t", tt.raw, err, tt.wantErr)
			continue
		}
		if err == nil && !slices.Equal(got, tt.want) {
			t.Errorf("parseSdata(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}
