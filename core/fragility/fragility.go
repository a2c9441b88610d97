// Package fragility holds fragility functions: parametric curves giving the
// probability of reaching or exceeding each damage state at a hazard intensity.
package fragility

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"multirisk/internal/errors"
)

// Shape identifies the parametric form of a limit-state curve. Shapes are
// data-driven; adding one must never require per-schema code branches.
type Shape string

const (
	// ShapeLogNormalCDF is a log-normal cumulative distribution. Mean is the
	// mean of the underlying normal, i.e. the log of the median intensity.
	ShapeLogNormalCDF Shape = "logncdf"

	// ShapeNormalCDF is a normal cumulative distribution
	ShapeNormalCDF Shape = "normcdf"
)

// LimitState is one exceedance curve: the probability of moving from damage
// state From to at least damage state To at a given intensity.
type LimitState struct {
	// From is the prior damage state the curve conditions on (0 = pristine)
	From int

	// To is the damage state whose exceedance the curve describes
	To int

	// Mean parameterizes the distribution (log-median for logncdf)
	Mean float64

	// Stddev is the (logarithmic, for logncdf) standard deviation
	Stddev float64

	cdf func(float64) float64
}

// NewLimitState builds a limit-state curve of the given shape
func NewLimitState(shape Shape, from, to int, mean, stddev float64) (LimitState, error) {
	ls := LimitState{From: from, To: to, Mean: mean, Stddev: stddev}
	switch shape {
	case ShapeLogNormalCDF:
		dist := distuv.LogNormal{Mu: mean, Sigma: stddev}
		ls.cdf = dist.CDF
	case ShapeNormalCDF:
		dist := distuv.Normal{Mu: mean, Sigma: stddev}
		ls.cdf = dist.CDF
	default:
		return LimitState{}, errors.Newf(errors.TypeInput, "unsupported fragility shape %q", shape)
	}
	return ls, nil
}

// Exceedance evaluates the curve at an intensity value
func (ls LimitState) Exceedance(x float64) float64 {
	return ls.cdf(x)
}

// Function is the full fragility description of one taxonomy class for one
// intensity measure type: an ordered family of limit-state curves plus the
// intensity range the curves are defined over.
type Function struct {
	// Taxonomy is the building class the function belongs to
	Taxonomy string

	// IMT is the intensity measure type, uppercase (PGA, MWH, LOAD, ...)
	IMT string

	// Unit is the expected unit of the intensity values (g, m, kPa, ...)
	Unit string

	// Shape is the parametric form of all curves in the function
	Shape Shape

	// IntensityMin is the lowest intensity the curves are defined for.
	// Below it every exceedance probability is 0 (no damage).
	IntensityMin float64

	// IntensityMax is the highest defined intensity. Above it the curves are
	// evaluated at IntensityMax rather than extrapolated, so extreme inputs
	// approach the distribution's asymptote instead of a forced certainty.
	IntensityMax float64

	curves   map[int][]LimitState // keyed by From state, sorted by To
	maxState int
}

// NewFunction assembles a function from its limit-state curves. Curves with
// From 0 must cover every state 1..max without gaps.
func NewFunction(taxonomy, imt, unit string, shape Shape, states []LimitState) (*Function, error) {
	if len(states) == 0 {
		return nil, errors.Newf(errors.TypeInput, "fragility function for %q has no limit states", taxonomy)
	}

	fn := &Function{
		Taxonomy:     taxonomy,
		IMT:          imt,
		Unit:         unit,
		Shape:        shape,
		IntensityMin: 0,
		IntensityMax: math.Inf(1),
		curves:       make(map[int][]LimitState),
	}
	for _, ls := range states {
		if ls.To <= ls.From {
			return nil, errors.Newf(errors.TypeInput,
				"limit state D%d->D%d for %q is not an increase in severity", ls.From, ls.To, taxonomy)
		}
		fn.curves[ls.From] = append(fn.curves[ls.From], ls)
		if ls.To > fn.maxState {
			fn.maxState = ls.To
		}
	}
	for from := range fn.curves {
		sort.Slice(fn.curves[from], func(i, j int) bool {
			return fn.curves[from][i].To < fn.curves[from][j].To
		})
	}

	base := fn.curves[0]
	if len(base) != fn.maxState {
		return nil, errors.Newf(errors.TypeInput,
			"fragility function for %q has gaps in its pristine-state curves", taxonomy)
	}
	for i, ls := range base {
		if ls.To != i+1 {
			return nil, errors.Newf(errors.TypeInput,
				"fragility function for %q has gaps in its pristine-state curves", taxonomy)
		}
	}
	return fn, nil
}

// WithIntensityRange sets the defined intensity range of the function
func (f *Function) WithIntensityRange(min, max float64) *Function {
	f.IntensityMin = min
	if max > 0 {
		f.IntensityMax = max
	}
	return f
}

// MaxState returns the most severe damage state the function describes
func (f *Function) MaxState() int {
	return f.maxState
}

// HasConditional reports whether the function carries curves conditioned on a
// prior damage state (sublevel data)
func (f *Function) HasConditional(from int) bool {
	return from > 0 && len(f.curves[from]) > 0
}

// clamp maps an intensity into the function's defined range. At or below the
// lowest threshold no state is exceeded; above the highest the curves are
// evaluated at the range edge, never forced to certainty.
func (f *Function) clamp(x float64) (float64, bool) {
	if x <= f.IntensityMin {
		return 0, false
	}
	if x > f.IntensityMax {
		return f.IntensityMax, true
	}
	return x, true
}

// Exceedance returns P(state >= k) for k = 1..MaxState at intensity x,
// evaluated on the pristine-state curves with range clamping applied.
// The result is non-increasing in k.
func (f *Function) Exceedance(x float64) []float64 {
	return f.exceedanceFrom(0, x)
}

func (f *Function) exceedanceFrom(from int, x float64) []float64 {
	n := f.maxState - from
	exceed := make([]float64, n)

	x, defined := f.clamp(x)
	if !defined {
		return exceed
	}

	prev := 1.0
	for i := 0; i < n; i++ {
		to := from + 1 + i
		ls, ok := f.curveFor(from, to)
		if !ok {
			exceed[i] = prev
			continue
		}
		p := ls.Exceedance(x)
		// curves fitted independently can cross; keep exceedance monotone
		if p > prev {
			p = prev
		}
		if p < 0 {
			p = 0
		}
		exceed[i] = p
		prev = p
	}
	return exceed
}

// curveFor resolves the curve governing a from->to transition. Conditional
// data may omit target states; the curve of the next lower from-state for the
// same target applies then, ending at the pristine curves, which are complete.
func (f *Function) curveFor(from, to int) (LimitState, bool) {
	for fr := from; fr >= 0; fr-- {
		for _, ls := range f.curves[fr] {
			if ls.To == to {
				return ls, true
			}
		}
	}
	return LimitState{}, false
}

// Probabilities derives the damage-state probability vector at intensity x by
// differencing consecutive exceedances: P(k) = P(>=k) - P(>=k+1). The vector
// has MaxState+1 entries, is non-negative and sums to 1.
func (f *Function) Probabilities(x float64) []float64 {
	return f.probabilitiesFrom(0, x)
}

// ConditionalProbabilities is the damage-state probability vector for a
// building already in state from, using the function's conditional curves.
// Entries below from are zero: damage cannot heal.
func (f *Function) ConditionalProbabilities(from int, x float64) []float64 {
	return f.probabilitiesFrom(from, x)
}

func (f *Function) probabilitiesFrom(from int, x float64) []float64 {
	probs := make([]float64, f.maxState+1)
	if from >= f.maxState {
		probs[f.maxState] = 1
		return probs
	}
	exceed := f.exceedanceFrom(from, x)
	prev := 1.0
	for i, e := range exceed {
		probs[from+i] = prev - e
		prev = e
	}
	probs[f.maxState] = prev
	return probs
}
