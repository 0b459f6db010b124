package optimization

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidInput  = errors.New("invalid optimization input")
	ErrSessionClosed = errors.New("solver session closed")
)

// Status is the termination state of a solve
type Status int

const (
	StatusOptimal Status = iota
	StatusSuboptimal
	StatusInfeasible
	StatusNumericError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusNumericError:
		return "numeric_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Usable reports whether the weights of a result may be recorded
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusSuboptimal
}

// Result holds the outcome of one mean-variance solve
type Result struct {
	Weights    []float64
	Status     Status
	Iterations int
	Objective  float64 // μᵀw − γ·wᵀΣw at Weights
}

// Solver creates solve sessions
// ⭐ SSOT: 평균-분산 최적화는 이 인터페이스를 통해서만
//
// Problem: maximize μᵀw − γ·wᵀΣw subject to 0 ≤ w ≤ 1 and Σw = 1.
type Solver interface {
	Name() string
	NewSession() (Session, error)
}

// Session owns solver resources for a single rebalance computation.
// Callers must Close it before the next iteration.
type Session interface {
	Solve(mu []float64, sigma mat.Symmetric, gamma float64) (Result, error)
	Close() error
}

// validateProblem checks dimensions and finiteness
func validateProblem(mu []float64, sigma mat.Symmetric, gamma float64) error {
	n := len(mu)
	if n == 0 {
		return fmt.Errorf("%w: empty mean vector", ErrInvalidInput)
	}
	if sigma == nil || sigma.SymmetricDim() != n {
		return fmt.Errorf("%w: covariance must be %dx%d", ErrInvalidInput, n, n)
	}
	if gamma < 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return fmt.Errorf("%w: gamma must be finite and >= 0, got %v", ErrInvalidInput, gamma)
	}
	for i, m := range mu {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: mean[%d] = %v", ErrInvalidInput, i, m)
		}
		for j := 0; j <= i; j++ {
			v := sigma.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: cov[%d][%d] = %v", ErrInvalidInput, i, j, v)
			}
		}
	}
	return nil
}

// objective evaluates μᵀw − γ·wᵀΣw
func objective(mu []float64, sigma mat.Symmetric, gamma float64, w []float64) float64 {
	wv := mat.NewVecDense(len(w), w)
	var sw mat.VecDense
	sw.MulVec(sigma, wv)
	ret := mat.Dot(mat.NewVecDense(len(mu), mu), wv)
	return ret - gamma*mat.Dot(wv, &sw)
}

// argmaxVertex puts all weight on the first largest mean.
// It is the exact solution when the risk term vanishes.
func argmaxVertex(mu []float64) []float64 {
	best := 0
	for i := 1; i < len(mu); i++ {
		if mu[i] > mu[best] {
			best = i
		}
	}
	w := make([]float64, len(mu))
	w[best] = 1
	return w
}
