/*
NAME
  filters_test.go

DESCRIPTION
  filters_test.go tests the 96kHz anti-aliasing low-pass filter's
  frequency response: its stop-band attenuation at 24kHz must be at
  least 70dB down from the passband, verified via an FFT of the
  zero-padded impulse response.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dlc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

func TestLPFStopBandAttenuation(t *testing.T) {
	const (
		fftSize    = 4096
		sampleRate = 96000.0
		stopFreq   = 24000.0
		minAtten   = 70.0 // dB
	)

	impulse := make([]float64, fftSize)
	scale := math.Pow(2, -float64(lpfCoeffBits))
	for i, c := range lpfCoeffQ18 {
		impulse[i] = float64(c) * scale
	}

	fft := fourier.NewFFT(fftSize)
	spectrum := fft.Coefficients(nil, impulse)

	magnitude := func(bin int) float64 {
		c := spectrum[bin]
		return math.Hypot(real(c), imag(c))
	}

	passband := magnitude(0) // DC: filter is normalised to unity passband gain.
	if passband <= 0 {
		t.Fatalf("passband magnitude is non-positive: %v", passband)
	}

	stopBin := int(math.Round(stopFreq / sampleRate * fftSize))
	stop := magnitude(stopBin)

	attenDB := 20 * math.Log10(passband/stop)
	if attenDB < minAtten {
		t.Errorf("stop-band attenuation at %gHz = %.1fdB, want >= %.1fdB", stopFreq, attenDB, minAtten)
	}
}

func TestLPFPassbandIsFlatNearDC(t *testing.T) {
	const fftSize = 4096

	impulse := make([]float64, fftSize)
	scale := math.Pow(2, -float64(lpfCoeffBits))
	for i, c := range lpfCoeffQ18 {
		impulse[i] = float64(c) * scale
	}

	fft := fourier.NewFFT(fftSize)
	spectrum := fft.Coefficients(nil, impulse)
	magnitude := func(bin int) float64 {
		c := spectrum[bin]
		return math.Hypot(real(c), imag(c))
	}

	dc := magnitude(0)
	const tol = 0.05 // 5% ripple tolerance just inside the passband.
	passBin := int(math.Trunc(10000.0 / 96000.0 * fftSize))
	if d := magnitude(passBin)/dc - 1; d > tol || d < -tol {
		t.Errorf("passband gain at 10kHz deviates from DC by %.3f, want within %.3f", d, tol)
	}
}
