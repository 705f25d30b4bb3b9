package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is the recursive radix-2 transform. len(data) must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum returns the magnitude of the first half of the FFT of data
// after removing its mean and zero-padding it to a power of two.
func PowerSpectrum(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}

	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}
