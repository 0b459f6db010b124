package optimization

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// QPConfig tunes the projected-gradient solver
type QPConfig struct {
	MaxIterations int     // 반복 상한 (도달 시 suboptimal)
	Tolerance     float64 // max |w_k+1 - w_k| 수렴 기준
}

// DefaultQPConfig returns default solver settings
func DefaultQPConfig() QPConfig {
	return QPConfig{
		MaxIterations: 20000,
		Tolerance:     1e-10,
	}
}

// QPSolver solves the long-only mean-variance QP with accelerated
// projected gradient on the probability simplex.
// ⭐ SSOT: 기본 평균-분산 솔버
type QPSolver struct {
	config QPConfig
}

// NewQPSolver creates a projected-gradient solver
func NewQPSolver(config QPConfig) *QPSolver {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultQPConfig().MaxIterations
	}
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultQPConfig().Tolerance
	}
	return &QPSolver{config: config}
}

// Name returns the solver identifier
func (s *QPSolver) Name() string { return "projected_gradient" }

// NewSession allocates a solve session
func (s *QPSolver) NewSession() (Session, error) {
	return &qpSession{config: s.config}, nil
}

type qpSession struct {
	config QPConfig
	closed bool

	// Σy workspace, sized on first Solve
	sy *mat.VecDense
}

func (q *qpSession) Close() error {
	q.closed = true
	q.sy = nil
	return nil
}

func (q *qpSession) Solve(mu []float64, sigma mat.Symmetric, gamma float64) (Result, error) {
	if q.closed {
		return Result{Status: StatusNumericError}, ErrSessionClosed
	}
	if err := validateProblem(mu, sigma, gamma); err != nil {
		return Result{Status: StatusInfeasible}, err
	}

	n := len(mu)
	lipschitz := 2 * gamma * maxEigenvalue(sigma)
	if gamma == 0 || lipschitz <= 0 {
		w := argmaxVertex(mu)
		return Result{Weights: w, Status: StatusOptimal, Objective: objective(mu, sigma, gamma, w)}, nil
	}
	step := 1 / lipschitz

	if q.sy == nil || q.sy.Len() != n {
		q.sy = mat.NewVecDense(n, nil)
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	y := make([]float64, n)
	copy(y, x)
	fx := objective(mu, sigma, gamma, x)
	t := 1.0

	candidate := make([]float64, n)
	converged := false
	iter := 0
	for iter = 1; iter <= q.config.MaxIterations; iter++ {
		// ∇(−f)(y) = −μ + 2γΣy
		q.sy.MulVec(sigma, mat.NewVecDense(n, y))
		for i := 0; i < n; i++ {
			g := -mu[i] + 2*gamma*q.sy.AtVec(i)
			candidate[i] = y[i] - step*g
		}
		next := ProjectSimplex(candidate)

		delta := 0.0
		for i := range next {
			delta = math.Max(delta, math.Abs(next[i]-x[i]))
		}

		fnext := objective(mu, sigma, gamma, next)
		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		if fnext < fx {
			// 목적함수 악화 시 모멘텀 리셋
			tNext = 1
			copy(y, next)
		} else {
			beta := (t - 1) / tNext
			for i := range y {
				y[i] = next[i] + beta*(next[i]-x[i])
			}
		}

		x, fx, t = next, fnext, tNext
		if delta < q.config.Tolerance {
			converged = true
			break
		}
	}

	for _, v := range x {
		if math.IsNaN(v) {
			return Result{Status: StatusNumericError, Iterations: iter}, nil
		}
	}

	status := StatusOptimal
	if !converged {
		status = StatusSuboptimal
		iter = q.config.MaxIterations
	}
	return Result{Weights: x, Status: status, Iterations: iter, Objective: fx}, nil
}

// maxEigenvalue returns the largest eigenvalue of a symmetric matrix,
// falling back to the Gershgorin bound when factorization fails.
func maxEigenvalue(sigma mat.Symmetric) float64 {
	var eig mat.EigenSym
	if eig.Factorize(sigma, false) {
		vals := eig.Values(nil)
		largest := math.Inf(-1)
		for _, v := range vals {
			largest = math.Max(largest, v)
		}
		return largest
	}

	n := sigma.SymmetricDim()
	bound := 0.0
	for i := 0; i < n; i++ {
		row := 0.0
		for j := 0; j < n; j++ {
			row += math.Abs(sigma.At(i, j))
		}
		bound = math.Max(bound, row)
	}
	return bound
}
