package optimization

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// PenaltySolver minimizes the mean-variance objective with gonum's
// derivative-free Nelder-Mead, evaluating the objective on the simplex
// projection of each trial point and penalizing the projection distance.
type PenaltySolver struct {
	penaltyWeight   float64
	funcEvaluations int
}

// NewPenaltySolver creates a gonum/optimize based solver
func NewPenaltySolver() *PenaltySolver {
	return &PenaltySolver{
		penaltyWeight:   1000.0,
		funcEvaluations: 50000,
	}
}

// Name returns the solver identifier
func (s *PenaltySolver) Name() string { return "nelder_mead_penalty" }

// NewSession allocates a solve session
func (s *PenaltySolver) NewSession() (Session, error) {
	return &penaltySession{solver: s}, nil
}

type penaltySession struct {
	solver *PenaltySolver
	closed bool
}

func (p *penaltySession) Close() error {
	p.closed = true
	return nil
}

func (p *penaltySession) Solve(mu []float64, sigma mat.Symmetric, gamma float64) (Result, error) {
	if p.closed {
		return Result{Status: StatusNumericError}, ErrSessionClosed
	}
	if err := validateProblem(mu, sigma, gamma); err != nil {
		return Result{Status: StatusInfeasible}, err
	}

	n := len(mu)
	penalty := p.solver.penaltyWeight

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := ProjectSimplex(x)
			obj := -objective(mu, sigma, gamma, w)

			// Penalty for leaving the feasible set
			var dist float64
			for i := range x {
				d := x[i] - w[i]
				dist += d * d
			}
			return obj + penalty*dist
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	settings := &optimize.Settings{
		FuncEvaluations: p.solver.funcEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 500,
		},
	}

	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if result == nil {
		return Result{Status: StatusNumericError}, nil
	}

	w := ProjectSimplex(result.X)
	out := Result{
		Weights:    w,
		Iterations: result.Stats.MajorIterations,
		Objective:  objective(mu, sigma, gamma, w),
	}

	switch result.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.GradientThreshold, optimize.FunctionThreshold, optimize.StepConvergence:
		out.Status = StatusOptimal
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		out.Status = StatusSuboptimal
	default:
		out.Status = StatusNumericError
	}
	if err != nil && out.Status == StatusOptimal {
		out.Status = StatusSuboptimal
	}

	return out, nil
}
