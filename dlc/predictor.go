/*
NAME
  predictor.go

DESCRIPTION
  predictor.go implements predictor-region reconstruction: AR order p
  (0..31), p signed Q9 reflection coefficients converted to direct form
  by the classical Levinson recurrence, then an integer lattice/AR
  synthesis filter applied to the region's PCM-residual samples. p == 0 is
  identical to raw PCM residuals.

  The reflection-to-direct LPC conversion follows the same idiom used by
  FLAC decoders, reimplemented here in a plain-integer style (no cgo, no
  floating point in the hot path) since this predictor region is
  reflection-coded rather than FLAC's direct-coefficient LPC subframe.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

import (
	"github.com/pkg/errors"

	"github.com/immaudio/iab/element"
)

// reflectionFracBits is the Q9 fixed-point scale of the 10-bit signed
// reflection coefficients carried on the wire.
const reflectionFracBits = 9

// maxPredictorOrder is the largest AR order representable in the 5-bit
// order field.
const maxPredictorOrder = 31

// reflectionToDirect converts p reflection (PARCOR) coefficients to direct-
// form AR coefficients via the Levinson recurrence, entirely in Q9 fixed
// point.
//
// a[m][i] holds the i-th direct coefficient of the order-m predictor;
// a[p] is returned. All intermediate products are carried in int64 to
// avoid overflow across orders up to maxPredictorOrder.
func reflectionToDirect(k []int16) ([]int64, error) {
	p := len(k)
	if p == 0 {
		return nil, nil
	}
	if p > maxPredictorOrder {
		return nil, errors.Wrapf(ErrBadParams, "predictor order %d exceeds maximum %d", p, maxPredictorOrder)
	}
	const scale = int64(1) << reflectionFracBits
	a := make([]int64, p+1) // 1-indexed; a[0] unused.
	prev := make([]int64, p+1)
	for m := 1; m <= p; m++ {
		km := int64(k[m-1])
		a[m] = km
		for i := 1; i < m; i++ {
			a[i] = prev[i] - (km*prev[m-i])/scale
		}
		copy(prev, a)
	}
	return a[1:], nil
}

// SynthesizePredictor reconstructs a predictor region's samples: direct-
// form AR coefficients are derived from the region's reflection
// coefficients, then the all-pole synthesis filter
//
//	x[n] = residual[n] + (sum_{i=1}^{p} direct[i] * x[n-i]) >> reflectionFracBits
//
// is run forward over the region, with x[n-i] for n-i < 0 treated as 0.
// p == 0 returns the residual samples unchanged.
func SynthesizePredictor(region element.PredictorRegion) ([]int32, error) {
	if int(region.Order) != len(region.ReflectionK) {
		return nil, errors.Wrapf(ErrDataInvalid, "predictor order %d does not match %d coefficients", region.Order, len(region.ReflectionK))
	}
	if uint32(len(region.Residual.Samples)) != region.LengthSamples {
		return nil, errors.Wrapf(ErrDataInvalid, "predictor region length %d does not match %d residual samples", region.LengthSamples, len(region.Residual.Samples))
	}
	direct, err := reflectionToDirect(region.ReflectionK)
	if err != nil {
		return nil, err
	}
	p := int(region.Order)
	out := make([]int32, len(region.Residual.Samples))
	for n := range out {
		var pred int64
		for i := 1; i <= p; i++ {
			if n-i < 0 {
				continue
			}
			pred += direct[i-1] * int64(out[n-i])
		}
		pred >>= reflectionFracBits
		out[n] = int32(int64(region.Residual.Samples[n]) + pred)
	}
	return out, nil
}

// AnalyzePredictor computes the p reflection coefficients (direct
// Levinson-Durbin analysis, Q9-quantized) that best linearly predict
// samples, for use by a full (non-simple) encoder. The simple encoder in
// this package never calls this — the decoder must accept predictor
// regions, but the shipped encoder isn't required to produce them.
func AnalyzePredictor(samples []int32, order int) ([]int16, error) {
	if order < 0 || order > maxPredictorOrder {
		return nil, errors.Wrapf(ErrBadParams, "predictor order %d out of range", order)
	}
	if order == 0 {
		return nil, nil
	}
	autocorr := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for n := lag; n < len(samples); n++ {
			sum += float64(samples[n]) * float64(samples[n-lag])
		}
		autocorr[lag] = sum
	}
	if autocorr[0] == 0 {
		return make([]int16, order), nil
	}
	errEnergy := autocorr[0]
	aCoef := make([]float64, order+1)
	reflection := make([]float64, order)
	for m := 1; m <= order; m++ {
		var acc float64
		for i := 1; i < m; i++ {
			acc += aCoef[i] * autocorr[m-i]
		}
		k := (autocorr[m] - acc) / errEnergy
		reflection[m-1] = k
		prev := append([]float64(nil), aCoef...)
		aCoef[m] = k
		for i := 1; i < m; i++ {
			aCoef[i] = prev[i] - k*prev[m-i]
		}
		errEnergy *= 1 - k*k
		if errEnergy <= 0 {
			errEnergy = 1e-9
		}
	}
	const scale = float64(int64(1) << reflectionFracBits)
	out := make([]int16, order)
	for i, k := range reflection {
		q := int64(k * scale)
		if q > 511 {
			q = 511
		}
		if q < -512 {
			q = -512
		}
		out[i] = int16(q)
	}
	return out, nil
}
