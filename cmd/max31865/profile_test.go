package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thermopi/max31865"
	"github.com/thermopi/max31865/rtd"
)

func writeProfile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensor.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
port: SPI0.0
wires: 4
ref_resistor: 4300
curve: ni617
r0: 500
calibration:
  offset: -0.3
  slope: 1.05
`)
	opts, err := loadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Port != "SPI0.0" {
		t.Errorf("port = %q, want SPI0.0", opts.Port)
	}
	if opts.WireCount != max31865.WireCount4 {
		t.Errorf("wire count = %v, want WireCount4", opts.WireCount)
	}
	if opts.RefResistor != 4300 {
		t.Errorf("ref resistor = %v, want 4300", opts.RefResistor)
	}
	if opts.Curve != rtd.NI617 {
		t.Errorf("curve = %v, want ni617", opts.Curve)
	}
	if opts.R0 != 500 {
		t.Errorf("r0 = %v, want 500", opts.R0)
	}
	if opts.Calibration.Offset != -0.3 || opts.Calibration.Slope != 1.05 {
		t.Errorf("calibration = %+v, want offset -0.3 slope 1.05", opts.Calibration)
	}
}

func TestLoadProfileDefaults(t *testing.T) {
	// A minimal profile keeps the driver defaults: Pt100 on pt385,
	// 428.5Ω reference, 3-wire, neutral calibration.
	path := writeProfile(t, "port: SPI1.0\n")
	opts, err := loadProfile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Curve != rtd.PT385 || opts.R0 != 100 {
		t.Errorf("curve/r0 = %v/%v, want pt385/100", opts.Curve, opts.R0)
	}
	if opts.RefResistor != 428.5 {
		t.Errorf("ref resistor = %v, want 428.5", opts.RefResistor)
	}
	if opts.WireCount != max31865.WireCount3 {
		t.Errorf("wire count = %v, want WireCount3", opts.WireCount)
	}
	if opts.Calibration.Slope != 1 || opts.Calibration.Offset != 0 {
		t.Errorf("calibration = %+v, want identity", opts.Calibration)
	}
}

func TestLoadProfileBadCurve(t *testing.T) {
	path := writeProfile(t, "curve: j-type\n")
	if _, err := loadProfile(path); err == nil {
		t.Fatal("expected an error for an unknown curve")
	}
}

func TestLoadProfileBadWires(t *testing.T) {
	p := Profile{Wires: 5}
	if _, err := p.Opts(); err == nil {
		t.Fatal("expected an error for an invalid wire count")
	}
}
