package constraint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semweave/metric"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/sparql"
)

// SubjectVar is the result variable reported as the violating subject.
const SubjectVar = "this"

// DefaultConcurrency bounds in-flight queries when Concurrency is unset.
const DefaultConcurrency = 4

// Querier executes query text against a target store. The store is only
// read during evaluation.
type Querier = sparql.Querier

// Evaluator runs constraints against a store.
type Evaluator struct {
	// Concurrency bounds parallel queries; zero means DefaultConcurrency.
	Concurrency int
	Logger      *slog.Logger
	Metrics     *metric.Metrics
}

// Evaluate runs every constraint and returns the records grouped per
// constraint in declaration order, rows in store order. A constraint whose
// query fails yields one error record and does not affect the others.
// After ctx is done, constraints not yet run report the context error.
func (e *Evaluator) Evaluate(ctx context.Context, q Querier, constraints []Constraint) []Result {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	perConstraint := make([][]Result, len(constraints))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range constraints {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("constraint %s panicked: %v", c.ID, r)
					logger.Error("Constraint panicked", "constraint", c.ID, "panic", r)
					perConstraint[i] = []Result{{ConstraintID: c.ID, Error: err}}
				}
			}()
			perConstraint[i] = e.run(ctx, logger, q, c)
			return nil
		})
	}
	_ = g.Wait()

	var out []Result
	for _, rs := range perConstraint {
		out = append(out, rs...)
	}
	return out
}

func (e *Evaluator) run(ctx context.Context, logger *slog.Logger, q Querier, c Constraint) []Result {
	if err := ctx.Err(); err != nil {
		return []Result{{ConstraintID: c.ID, Error: err}}
	}

	start := time.Now()
	res, err := q.Query(ctx, c.Body)
	if err != nil {
		logger.Warn("Constraint failed", "constraint", c.ID, "error", err)
		e.Metrics.RecordEvaluation(c.ID, 0, err, time.Since(start))
		return []Result{{ConstraintID: c.ID, Error: err}}
	}

	rs := violations(c, res)
	e.Metrics.RecordEvaluation(c.ID, len(rs), nil, time.Since(start))
	logger.Debug("Constraint evaluated", "constraint", c.ID, "violations", len(rs))
	return rs
}

// violations turns result rows into records. An ASK query that holds is a
// single violation without a subject.
func violations(c Constraint, res *sparql.Result) []Result {
	if res.Type == sparql.QueryTypeAsk {
		if res.Boolean {
			return []Result{{ConstraintID: c.ID, Message: Message(c.ID)}}
		}
		return nil
	}
	out := make([]Result, 0, len(res.Bindings))
	for _, row := range res.Bindings {
		out = append(out, Result{
			ConstraintID: c.ID,
			Subject:      subject(row),
			Message:      Message(c.ID),
		})
	}
	return out
}

func subject(row sparql.Binding) rdf.Term {
	if t, ok := row[SubjectVar]; ok {
		return t
	}
	return rdf.Term{}
}
