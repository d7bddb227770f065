package policy

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// LogisticConfig tunes the SGD logistic classifier.
type LogisticConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	L2           float64 `yaml:"l2"`
	Seed         int64   `yaml:"seed"`
}

// DefaultLogisticConfig returns settings suitable for a few dozen rows.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		LearningRate: 0.1,
		Epochs:       50,
		L2:           0.0001,
		Seed:         1,
	}
}

// Logistic is a logistic-regression classifier trained by stochastic
// gradient descent. Successive Fit calls warm-start from the previous
// weights, so a shared instance keeps learning across batches. Safe for
// concurrent use.
type Logistic struct {
	mu      sync.Mutex
	cfg     LogisticConfig
	rng     *rand.Rand
	weights []float64
	bias    float64
	fitted  bool
	batches int
}

// NewLogistic creates an untrained classifier.
func NewLogistic(cfg LogisticConfig) *Logistic {
	def := DefaultLogisticConfig()
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.L2 < 0 {
		cfg.L2 = 0
	}
	return &Logistic{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Fit runs the configured number of SGD epochs over the rows.
func (l *Logistic) Fit(X [][]float64, y []bool) error {
	if len(X) == 0 {
		return errors.New("policy: fit on empty table")
	}
	if len(X) != len(y) {
		return fmt.Errorf("policy: %d rows but %d labels", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("policy: row %d has %d features, want %d", i, len(row), width)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.weights) != width {
		l.weights = make([]float64, width)
		l.bias = 0
	}

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	lr := l.cfg.LearningRate
	for epoch := 0; epoch < l.cfg.Epochs; epoch++ {
		l.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			target := 0.0
			if y[i] {
				target = 1
			}
			grad := l.probability(X[i]) - target
			for j, v := range X[i] {
				l.weights[j] -= lr * (grad*v + l.cfg.L2*l.weights[j])
			}
			l.bias -= lr * grad
		}
	}
	l.fitted = true
	l.batches++
	return nil
}

// Predict reports whether x belongs to the positive class.
func (l *Logistic) Predict(x []float64) (bool, error) {
	p, err := l.Probability(x)
	if err != nil {
		return false, err
	}
	return p >= 0.5, nil
}

// Probability returns the estimated chance that x is positive.
func (l *Logistic) Probability(x []float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.fitted {
		return 0, ErrNotFitted
	}
	if len(x) != len(l.weights) {
		return 0, fmt.Errorf("policy: predict with %d features, model has %d", len(x), len(l.weights))
	}
	return l.probability(x), nil
}

// Batches returns how many times Fit has succeeded.
func (l *Logistic) Batches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.batches
}

func (l *Logistic) probability(x []float64) float64 {
	z := l.bias
	for j, v := range x {
		z += l.weights[j] * v
	}
	return 1 / (1 + math.Exp(-z))
}
