// Package analysis extracts frequency content from recorded result series.
// Series of any length are accepted; transforms zero-pad to the next power
// of two. Records are treated as uniformly spaced in time.
package analysis

import (
	"math"
	"math/cmplx"
)

// fft computes the discrete Fourier transform by radix-2 recursion. The
// input length must be a power of two.
func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// PowerSpectrum returns the magnitude spectrum of series, one value per
// frequency bin up to the Nyquist limit. Bin k of a series sampled at
// spacing dt corresponds to frequency k/(n*dt), where n is the padded
// length, 2*len(result).
func PowerSpectrum(series []float64) []float64 {
	padded := make([]float64, nextPowerOfTwo(len(series)))
	copy(padded, series)

	transformed := fft(padded)
	ps := make([]float64, len(transformed)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(transformed[i])
	}
	return ps
}

// Dominant locates the strongest non-constant bin of a power spectrum and
// returns its frequency and period. dt is the sample spacing of the series
// the spectrum came from. A flat or empty spectrum reports zero for both.
func Dominant(ps []float64, dt float64) (freq, period float64) {
	if len(ps) == 0 || dt <= 0 {
		return 0, 0
	}

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0, 0
	}

	n := 2 * len(ps)
	freq = float64(maxIdx) / (float64(n) * dt)
	return freq, 1 / freq
}
