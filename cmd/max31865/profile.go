package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thermopi/max31865"
	"github.com/thermopi/max31865/rtd"
)

// Profile describes one sensor in a YAML file:
//
//	port: SPI0.0
//	wires: 3
//	ref_resistor: 428.5
//	curve: pt385
//	r0: 100
//	calibration:
//	  offset: -0.3
//	  slope: 1.05
type Profile struct {
	Port        string             `yaml:"port"`
	Wires       int                `yaml:"wires"`
	RefResistor float64            `yaml:"ref_resistor"`
	Curve       string             `yaml:"curve"`
	R0          float64            `yaml:"r0"`
	Calibration CalibrationProfile `yaml:"calibration"`
}

type CalibrationProfile struct {
	Offset float64 `yaml:"offset"`
	Slope  float64 `yaml:"slope"`
}

func loadProfile(path string) (*max31865.Opts, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return p.Opts()
}

// Opts maps the profile onto driver options, filling defaults for fields
// the file leaves out.
func (p *Profile) Opts() (*max31865.Opts, error) {
	opts := max31865.DefaultOptions()
	opts.Port = p.Port

	switch p.Wires {
	case 0:
		// keep default
	case 2:
		opts.WireCount = max31865.WireCount2
	case 3:
		opts.WireCount = max31865.WireCount3
	case 4:
		opts.WireCount = max31865.WireCount4
	default:
		return nil, fmt.Errorf("invalid wire count: %d", p.Wires)
	}

	if p.Curve != "" {
		curve, err := parseCurve(p.Curve)
		if err != nil {
			return nil, err
		}
		opts.Curve = curve
	}
	if p.RefResistor != 0 {
		opts.RefResistor = p.RefResistor
	}
	if p.R0 != 0 {
		opts.R0 = p.R0
	}
	opts.Calibration = rtd.Calibration{
		Offset: p.Calibration.Offset,
		Slope:  p.Calibration.Slope,
	}
	if opts.Calibration.Slope == 0 {
		opts.Calibration.Slope = 1
	}

	return opts, nil
}

func parseCurve(name string) (rtd.Curve, error) {
	switch name {
	case "pt385":
		return rtd.PT385, nil
	case "pt391":
		return rtd.PT391, nil
	case "cu428":
		return rtd.CU428, nil
	case "ni617":
		return rtd.NI617, nil
	}
	return 0, fmt.Errorf("unknown rtd curve: %q", name)
}
