// Package scaling resolves target image sizes from resource flags and
// resamples images, halving step by step when shrinking a lot.
package scaling

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for unknown names.
var ErrUnknownAlgorithm = errors.New("scaling: unknown algorithm")

// Algorithm is a named resampling filter.
type Algorithm struct {
	name      string
	multiStep bool
	interp    draw.Interpolator
}

// Available algorithms.
var (
	Nearest  = Algorithm{name: "nearest", interp: draw.NearestNeighbor}
	Bilinear = Algorithm{name: "bilinear", multiStep: true, interp: draw.BiLinear}
	Bicubic  = Algorithm{name: "bicubic", interp: draw.CatmullRom}
	Quality  = Algorithm{name: "quality", multiStep: true, interp: mitchell}
)

// Algorithms lists every algorithm in declaration order.
var Algorithms = []Algorithm{Nearest, Bilinear, Bicubic, Quality}

// mitchell is the Mitchell-Netravali cubic with B = C = 1/3.
var mitchell = &draw.Kernel{Support: 2, At: func(t float64) float64 {
	const b, c = 1.0 / 3, 1.0 / 3
	t = math.Abs(t)
	switch {
	case t < 1:
		return ((12-9*b-6*c)*t*t*t + (-18+12*b+6*c)*t*t + (6 - 2*b)) / 6
	case t < 2:
		return ((-b-6*c)*t*t*t + (6*b+30*c)*t*t + (-12*b-48*c)*t + (8*b + 24*c)) / 6
	}
	return 0
}}

// Name returns the flag spelling of the algorithm.
func (a Algorithm) Name() string { return a.name }

// MultiStep reports whether large reductions are done by repeated halving.
func (a Algorithm) MultiStep() bool { return a.multiStep }

func (a Algorithm) String() string { return a.name }

// IsZero reports whether a is the zero Algorithm.
func (a Algorithm) IsZero() bool { return a.interp == nil }

// ParseAlgorithm looks an algorithm up by name, ignoring case.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(a.name, name) {
			return a, nil
		}
	}
	return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}
