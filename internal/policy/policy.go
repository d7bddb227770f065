// Package policy provides the decision-policy capability creatures consult
// when choosing between behaviors, plus a small online logistic classifier.
package policy

import (
	"errors"
	"math/rand"
)

// ErrNotFitted is returned by Predict before the first successful Fit.
var ErrNotFitted = errors.New("policy: classifier not fitted")

// Classifier is a binary decision policy trained on feature rows.
type Classifier interface {
	Fit(X [][]float64, y []bool) error
	Predict(x []float64) (bool, error)
}

// Decide asks clf for a decision on x. When clf is nil, untrained or fails
// for any other reason, it falls back to a fair coin from rng. predicted
// reports whether the choice came from the classifier.
func Decide(clf Classifier, x []float64, rng *rand.Rand) (choice, predicted bool) {
	if clf != nil {
		if ok, err := clf.Predict(x); err == nil {
			return ok, true
		}
	}
	return rng.Intn(2) == 1, false
}
