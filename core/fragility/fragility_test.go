package fragility

import (
	"math"
	"testing"
)

func mustFunction(t *testing.T, states []LimitState) *Function {
	t.Helper()
	fn, err := NewFunction("URM1", "PGA", "g", ShapeLogNormalCDF, states)
	if err != nil {
		t.Fatalf("NewFunction failed: %v", err)
	}
	return fn
}

func mustLimitState(t *testing.T, shape Shape, from, to int, mean, stddev float64) LimitState {
	t.Helper()
	ls, err := NewLimitState(shape, from, to, mean, stddev)
	if err != nil {
		t.Fatalf("NewLimitState failed: %v", err)
	}
	return ls
}

func TestLogNormalCurveAtExtremes(t *testing.T) {
	ls := mustLimitState(t, ShapeLogNormalCDF, 0, 1, 5.9, 0.8)

	p0 := ls.Exceedance(0)
	if math.Abs(p0) > 0.0001 {
		t.Errorf("exceedance at intensity 0 = %g, want ~0", p0)
	}

	p1 := ls.Exceedance(1000)
	if p1 <= 0.896 || p1 >= 0.897 {
		t.Errorf("exceedance at intensity 1000 = %g, want in (0.896, 0.897)", p1)
	}
}

func TestNormalCurve(t *testing.T) {
	ls := mustLimitState(t, ShapeNormalCDF, 0, 1, 5.0, 1.0)

	if p := ls.Exceedance(5.0); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("exceedance at the mean = %g, want 0.5", p)
	}
	if p := ls.Exceedance(2.0); p >= 0.01 {
		t.Errorf("exceedance far below the mean = %g, want < 0.01", p)
	}
}

func TestUnsupportedShapeRejected(t *testing.T) {
	if _, err := NewLimitState(Shape("weibull"), 0, 1, 1, 1); err == nil {
		t.Fatal("expected error for unsupported shape")
	}
}

func TestProbabilityVectorIsValid(t *testing.T) {
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.8), 0.4),
	})

	for _, x := range []float64{0, 0.1, 0.5, 0.6, 1.0, 10, 1000} {
		probs := fn.Probabilities(x)
		if len(probs) != 3 {
			t.Fatalf("vector at x=%g has %d entries, want 3", x, len(probs))
		}
		sum := 0.0
		for state, p := range probs {
			if p < 0 {
				t.Errorf("negative probability %g at state %d for x=%g", p, state, x)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("vector at x=%g sums to %.12f, want 1", x, sum)
		}
	}
}

func TestExceedanceMatchesReferenceScenario(t *testing.T) {
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.8), 0.4),
	})

	exceed := fn.Exceedance(0.6)
	if exceed[0] <= 0.67 || exceed[0] >= 0.69 {
		t.Errorf("P(>=1) at 0.6 = %g, want ~0.68", exceed[0])
	}
	if exceed[1] <= 0.23 || exceed[1] >= 0.24 {
		t.Errorf("P(>=2) at 0.6 = %g, want ~0.235", exceed[1])
	}
}

func TestIntensityBelowRangeMeansNoDamage(t *testing.T) {
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.8), 0.4),
	}).WithIntensityRange(0.3, 5.0)

	probs := fn.Probabilities(0.2)
	if probs[0] != 1 {
		t.Errorf("P(no damage) below the defined range = %g, want 1", probs[0])
	}
	for state := 1; state < len(probs); state++ {
		if probs[state] != 0 {
			t.Errorf("P(state %d) below the defined range = %g, want 0", state, probs[state])
		}
	}
}

func TestIntensityAboveRangeClampsToAsymptote(t *testing.T) {
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
	}).WithIntensityRange(0, 2.0)

	atMax := fn.Exceedance(2.0)[0]
	beyond := fn.Exceedance(50.0)[0]
	if beyond != atMax {
		t.Errorf("exceedance beyond the range = %g, want clamped to %g", beyond, atMax)
	}
	if beyond >= 1 {
		t.Errorf("clamped exceedance = %g, must stay below certainty", beyond)
	}
}

func TestExceedanceStaysMonotone(t *testing.T) {
	// curves fitted independently can cross at high intensity; the derived
	// exceedance must still be non-increasing in the damage state
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.9), 0.1),
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.5), 0.9),
	})

	for _, x := range []float64{0.1, 0.5, 1.0, 3.0} {
		exceed := fn.Exceedance(x)
		if exceed[1] > exceed[0] {
			t.Errorf("exceedance increases with severity at x=%g: %v", x, exceed)
		}
	}
}

func TestConditionalCurvesAreUsedWhenPresent(t *testing.T) {
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.8), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 1, 2, math.Log(1.2), 0.5),
	})

	if !fn.HasConditional(1) {
		t.Fatal("expected conditional curves for prior state 1")
	}
	if fn.HasConditional(2) {
		t.Error("unexpected conditional curves for prior state 2")
	}

	probs := fn.ConditionalProbabilities(1, 0.6)
	if probs[0] != 0 {
		t.Errorf("conditional vector allows healing to state 0: %v", probs)
	}
	sum := probs[1] + probs[2]
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("conditional vector sums to %g, want 1", sum)
	}
}

func TestConditionalGapFallsBackToLowerCurve(t *testing.T) {
	// the data conditions 1->3 on prior state 1 but carries no 1->2 curve;
	// the pristine 0->2 curve governs that transition
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.8), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 0, 3, math.Log(1.2), 0.4),
		mustLimitState(t, ShapeLogNormalCDF, 1, 3, math.Log(2.0), 0.4),
	})

	probs := fn.ConditionalProbabilities(1, 0.8)
	base := fn.Exceedance(0.8)
	// P(>=2 | 1) equals the pristine 0->2 exceedance, here 0.5 at the median
	if got := probs[2] + probs[3]; math.Abs(got-base[1]) > 1e-12 {
		t.Errorf("P(>=2 | 1) = %g, want pristine value %g", got, base[1])
	}
	if probs[1] < 0.4 {
		t.Errorf("P(stay in 1) = %g, a missing curve must not force the transition", probs[1])
	}

	// at an intensity far below every curve nothing moves
	low := fn.ConditionalProbabilities(1, 0.05)
	if math.Abs(low[1]-1) > 1e-6 {
		t.Errorf("P(stay in 1) at negligible intensity = %g, want ~1", low[1])
	}
}

func TestIntensityAtThresholdMeansNoDamage(t *testing.T) {
	fn := mustFunction(t, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 1, math.Log(0.5), 0.4),
	}).WithIntensityRange(0.3, 5.0)

	probs := fn.Probabilities(0.3)
	if probs[0] != 1 || probs[1] != 0 {
		t.Errorf("vector at the exact lower threshold = %v, want no damage", probs)
	}
}

func TestPristineCurveGapsRejected(t *testing.T) {
	_, err := NewFunction("URM1", "PGA", "g", ShapeLogNormalCDF, []LimitState{
		mustLimitState(t, ShapeLogNormalCDF, 0, 2, math.Log(0.8), 0.4),
	})
	if err == nil {
		t.Fatal("expected error for a function missing its 0->1 curve")
	}
}
