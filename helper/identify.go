package helper

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the largest embedding distance still accepted as the
// same person.
const DefaultTolerance = 0.5

// Candidate is one registered embedding and the user it belongs to.
type Candidate struct {
	ID     int64
	Vector []float64
}

// Match is the outcome of Identify. ID and Distance describe the closest
// candidate; Found reports whether it is within tolerance.
type Match struct {
	ID       int64
	Distance float64
	Found    bool
}

// FaceDistance returns the Euclidean distance between two embeddings, or
// +Inf when their lengths differ.
func FaceDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2)
}

// Identify scans candidates in order and returns the closest one. Ties keep
// the earlier candidate. The match is accepted when its distance is at most
// tolerance. Candidates with a different dimensionality never match.
func Identify(query []float64, candidates []Candidate, tolerance float64) Match {
	best := Match{Distance: math.Inf(1)}
	for _, c := range candidates {
		d := FaceDistance(query, c.Vector)
		if d < best.Distance {
			best.ID = c.ID
			best.Distance = d
		}
	}
	best.Found = !math.IsInf(best.Distance, 1) && best.Distance <= tolerance
	return best
}
