package die

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource feeds a die. Uint64 is raw entropy, Float64 is uniform in
// [0, 1). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Uint64() uint64
	Float64() float64
}

// osEntropy reads from the operating system on every call.
type osEntropy struct{}

func (osEntropy) Uint64() uint64 {
	var buf [8]byte
	cryptorand.Read(buf[:]) // never returns an error since Go 1.24
	return binary.LittleEndian.Uint64(buf[:])
}

func (e osEntropy) Float64() float64 { return unitInterval(e.Uint64()) }

// unitInterval keeps the top 53 bits of u, the precision of a float64.
func unitInterval(u uint64) float64 { return float64(u>>11) / (1 << 53) }

// DefaultRNG is what a die rolls with when the caller gives no source.
func DefaultRNG() RandomSource { return osEntropy{} }

// RandomSeed draws a seed for NewSeededRNG from the operating system.
// Callers that run unseeded but still want a reproducible record use it and
// report the value.
func RandomSeed() uint64 { return osEntropy{}.Uint64() }

// NewSeededRNG returns a PCG generator; equal seeds give equal rolls.
func NewSeededRNG(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, 0))
}
