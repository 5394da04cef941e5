package scenario

import (
	mathrand "math/rand"
	mathrand2 "math/rand/v2"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Payment-flow constants, carried over unchanged from the reference
// implementation's params module.
const (
	AmountMu             = 10.819778284410283 // math.Log(50000)
	AmountSigma          = 0.7
	MinProcessingDelay   = 1.0
	ExpectedExtraDelay   = 3.0
	JamDelay             = 7.0
	HonestPaymentsPerSec = 0.1

	// DustLimit is the smallest payment body a channel will forward; a
	// jam HTLC is built at exactly this amount, since a jam's only goal
	// is to occupy a slot as cheaply as possible.
	DustLimit = 354.0
)

// pcgSource adapts math/rand/v2's PCG, a splittable, statistically well
// tested generator, to the golang.org/x/exp/rand.Source interface that
// gonum's distuv distributions expect.
type pcgSource struct {
	pcg *mathrand2.PCG
}

func newPCGSource(seed uint64) *pcgSource {
	return &pcgSource{pcg: mathrand2.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
}

func (s *pcgSource) Uint64() uint64 { return s.pcg.Uint64() }

func (s *pcgSource) Seed(seed uint64) {
	s.pcg = mathrand2.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

var _ exprand.Source = (*pcgSource)(nil)

// HonestSampler draws the three random quantities a generated honest
// payment needs: its body amount, the processing delay it carries, and
// the gap before the next payment is generated.
type HonestSampler struct {
	amount       distuv.LogNormal
	extraDelay   distuv.Exponential
	interArrival distuv.Exponential

	// endpoints picks the sender/receiver for each generated payment. It
	// is a separate, stdlib Rand rather than a distuv distribution
	// because it only ever needs Intn over a small slice.
	endpoints *mathrand.Rand
}

// NewHonestSampler builds a HonestSampler seeded deterministically from
// seed. paymentsPerSecond sets the mean rate of the inter-arrival
// distribution. The sampler carries its own random state, so repeated
// calls across a series of runs never repeat the same schedule.
func NewHonestSampler(seed uint64, paymentsPerSecond float64) *HonestSampler {
	src := newPCGSource(seed)
	return &HonestSampler{
		amount:       distuv.LogNormal{Mu: AmountMu, Sigma: AmountSigma, Src: src},
		extraDelay:   distuv.Exponential{Rate: 1 / ExpectedExtraDelay, Src: src},
		interArrival: distuv.Exponential{Rate: paymentsPerSecond, Src: src},
		endpoints:    mathRandFromSeed(seed ^ 0xd1b54a32d192ed03),
	}
}

// PickEndpoint returns a random index into a slice of length n.
func (s *HonestSampler) PickEndpoint(n int) int { return s.endpoints.Intn(n) }

// Amount draws a payment body from the lognormal amount distribution.
func (s *HonestSampler) Amount() float64 { return s.amount.Rand() }

// ProcessingDelay draws a processing delay: a fixed minimum plus an
// exponentially distributed extra wait.
func (s *HonestSampler) ProcessingDelay() float64 { return MinProcessingDelay + s.extraDelay.Rand() }

// InterArrivalDelay draws the gap before the next honest payment is
// generated.
func (s *HonestSampler) InterArrivalDelay() float64 { return s.interArrival.Rand() }

// mathRandFromSeed returns a stdlib *math/rand.Rand seeded with seed, for
// callers (the Simulator's deliberate-failure rolls, schedule sender/
// receiver sampling) that need the stdlib Rand interface rather than a
// distuv distribution.
func mathRandFromSeed(seed uint64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(int64(seed)))
}
