package dataset

import (
	"math"
	"math/rand/v2"
)

// DefaultTrainRatio is the share of records that go to the training set.
const DefaultTrainRatio = 0.8

// Prepared is a deduplicated, shuffled and partitioned dataset.
type Prepared struct {
	Train   []Record
	Test    []Record
	Classes []string
	// Duplicates is the number of records dropped by deduplication.
	Duplicates int
}

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Prepare dedupes records, derives the class list in first-seen order,
// shuffles with rng and splits at floor(ratio*n). There is no stratification:
// on small inputs either side may be empty, and a class may be absent from
// one side.
func Prepare(records []Record, rng *rand.Rand, ratio float64) Prepared {
	distinct, dups := Dedupe(records)
	classes := Classes(distinct)
	Shuffle(distinct, rng)
	train, test := Split(distinct, ratio)
	return Prepared{
		Train:      train,
		Test:       test,
		Classes:    classes,
		Duplicates: dups,
	}
}

// Shuffle permutes records in place with a Fisher-Yates shuffle.
func Shuffle(records []Record, rng *rand.Rand) {
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}

// Split returns records[:k] and records[k:] with k = floor(ratio*len).
// Ratio is clamped to [0, 1].
func Split(records []Record, ratio float64) (train, test []Record) {
	k := TrainSize(len(records), ratio)
	return records[:k:k], records[k:]
}

// TrainSize is the number of training records for a dataset of n records.
func TrainSize(n int, ratio float64) int {
	switch {
	case ratio <= 0 || n == 0:
		return 0
	case ratio >= 1:
		return n
	}
	// The epsilon absorbs representation error in ratios such as 0.8.
	k := int(math.Floor(ratio*float64(n) + 1e-9))
	return min(k, n)
}
