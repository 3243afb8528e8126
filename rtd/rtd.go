// Package rtd converts between resistance and temperature for the
// resistance-temperature-detector families of GOST 6651-2009.
//
// Four material curves are supported: platinum 0.00385 and 0.00391 °C⁻¹,
// copper 0.00428 °C⁻¹ and nickel 0.00617 °C⁻¹. Resistance is in ohms,
// temperature in °C, and r0 is the sensor's resistance at 0 °C (100 for
// Pt100, 1000 for Pt1000 and so on).
//
// Conversions are pure and unguarded: inputs outside a sensor's physical
// range are extrapolated through the same closed-form equations rather
// than rejected, and a resistance far enough out to produce a negative
// radicand in the quadratic branch yields NaN.
package rtd

import "math"

// Curve selects a material family's coefficient set.
type Curve int

const (
	// PT385 is platinum, alpha 0.00385 °C⁻¹ (Pt100/Pt500/Pt1000).
	PT385 Curve = iota
	// PT391 is platinum, alpha 0.00391 °C⁻¹ (50П/100П).
	PT391
	// CU428 is copper, alpha 0.00428 °C⁻¹ (50М/100М).
	CU428
	// NI617 is nickel, alpha 0.00617 °C⁻¹ (100Н/500Н/1000Н).
	NI617
)

type coeffs struct {
	a, b, c float64
	// Inverse-polynomial terms for the sub-zero branch (platinum,
	// copper) or the above-100°C branch (nickel, first three only).
	d          [4]float64
	tMin, tMax float64
}

// Coefficient tables from GOST 6651-2009.
var curves = [...]coeffs{
	PT385: {
		a: 3.9083e-3, b: -5.775e-7, c: -4.183e-12,
		d:    [4]float64{255.819, 9.14550, -2.92363, 1.79090},
		tMin: -200, tMax: 850,
	},
	PT391: {
		a: 3.9692e-3, b: -5.8290e-7, c: -4.3303e-12,
		d:    [4]float64{251.903, 8.80035, -2.91506, 1.67611},
		tMin: -200, tMax: 850,
	},
	CU428: {
		a: 4.28e-3, b: -6.2032e-7, c: 8.5154e-10,
		d:    [4]float64{233.87, 7.9370, -2.0062, -0.3953},
		tMin: -180, tMax: 200,
	},
	NI617: {
		a: 5.4963e-3, b: 6.7556e-6, c: 9.2004e-9,
		d:    [4]float64{144.096, -25.502, 4.4876},
		tMin: -60, tMax: 180,
	},
}

func (c Curve) String() string {
	switch c {
	case PT385:
		return "pt385"
	case PT391:
		return "pt391"
	case CU428:
		return "cu428"
	case NI617:
		return "ni617"
	}
	return "unknown"
}

// TemperatureRange returns the family's documented operating range in °C.
// The range is informational; Temperature and Resistance do not enforce it.
func (c Curve) TemperatureRange() (min, max float64) {
	k := curves[c]
	return k.tMin, k.tMax
}

// Temperature converts a resistance in ohms to °C.
func (c Curve) Temperature(res, r0 float64) float64 {
	k := curves[c]
	ratio := res / r0
	switch c {
	case PT385, PT391:
		if res < r0 {
			return polysum(k.d[:], ratio-1)
		}
		return quadroot(k.a, k.b, ratio)
	case CU428:
		if res < r0 {
			return polysum(k.d[:], ratio-1)
		}
		return (ratio - 1) / k.a
	case NI617:
		// The nickel curve's quadratic form holds up to 100 °C, which
		// does not coincide with r0, so the branch cut is an absolute
		// resistance threshold derived from r0.
		if res < nickelCrossover(r0) {
			return quadroot(k.a, k.b, ratio)
		}
		return polysum(k.d[:3], ratio-1.6172) + 100
	}
	return math.NaN()
}

// Resistance converts a temperature in °C to ohms.
func (c Curve) Resistance(temp, r0 float64) float64 {
	k := curves[c]
	switch c {
	case PT385, PT391:
		r := 1 + k.a*temp + k.b*temp*temp
		if temp < 0 {
			r += k.c * (temp - 100) * temp * temp * temp
		}
		return r0 * r
	case CU428:
		if temp < 0 {
			return r0 * (1 + k.a*temp + k.b*temp*(temp+6.7) + k.c*temp*temp*temp)
		}
		return r0 * (1 + k.a*temp)
	case NI617:
		r := 1 + k.a*temp + k.b*temp*temp
		if temp >= 100 {
			r += k.c * (temp - 100) * temp * temp
		}
		return r0 * r
	}
	return math.NaN()
}

// nickelCrossover returns the resistance the nickel curve reaches at
// 100 °C for the standard nominals. Unlisted r0 values yield 0, which
// sends every conversion down the high branch.
func nickelCrossover(r0 float64) float64 {
	switch r0 {
	case 100:
		return 161.72
	case 500:
		return 808.59
	case 1000:
		return 1617.2
	}
	return 0
}

// polysum evaluates sum(d[i-1] * x^i) for i = 1..len(d).
func polysum(d []float64, x float64) float64 {
	sum, xp := 0.0, 1.0
	for _, di := range d {
		xp *= x
		sum += di * xp
	}
	return sum
}

// quadroot solves ratio = 1 + a*t + b*t² for t, taking the root that is
// physically valid for the RTD sign convention. A ratio far enough below
// the curve's vertex makes the radicand negative and the result NaN.
func quadroot(a, b, ratio float64) float64 {
	return (math.Sqrt(a*a-4*b*(1-ratio)) - a) / (2 * b)
}

// Calibration is a linear correction applied to a converted temperature:
// offset in °C, slope dimensionless.
type Calibration struct {
	Offset float64
	Slope  float64
}

// Identity returns the neutral calibration (offset 0, slope 1).
func Identity() Calibration {
	return Calibration{Slope: 1}
}

// Apply returns t*Slope + Offset.
func (c Calibration) Apply(t float64) float64 {
	return t*c.Slope + c.Offset
}
