package cedar

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/charbonnierg/cedar/schema"
	"github.com/charbonnierg/cedar/types"
)

// An Authorizer binds a policy set to an optional schema and logger so
// repeated authorization calls share one validated configuration. It is
// immutable after construction and safe for concurrent use.
type Authorizer struct {
	policies *PolicySet
	schema   *schema.Schema
	logger   *slog.Logger
}

// An AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithSchema validates the policy set against s at construction and
// validates entities on every call. Entity validation failures degrade
// to a Deny response carrying the validation errors; they never allow.
func WithSchema(s *schema.Schema) AuthorizerOption {
	return func(a *Authorizer) { a.schema = s }
}

// WithLogger logs each decision at Info level with the request uids,
// the decision and the deciding policy ids.
func WithLogger(logger *slog.Logger) AuthorizerOption {
	return func(a *Authorizer) { a.logger = logger }
}

// NewAuthorizer returns an Authorizer over the given policy set. When a
// schema is supplied, the policies are validated against it here, and a
// validation failure is a construction error.
func NewAuthorizer(policies *PolicySet, opts ...AuthorizerOption) (*Authorizer, error) {
	a := &Authorizer{policies: policies}
	for _, opt := range opts {
		opt(a)
	}
	if a.schema != nil {
		res := ValidatePolicies(a.schema, policies)
		if !res.Passed() {
			return nil, fmt.Errorf("policy validation failed: %s", strings.Join(res.Errors, "; "))
		}
	}
	return a, nil
}

// IsAuthorized decides one request. With a schema, the entities are
// validated first; a failure produces a Deny response listing the
// validation errors instead of evaluating any policy.
func (a *Authorizer) IsAuthorized(req Request, entities types.EntityMap) Response {
	if errs := a.validateEntities(entities); errs != nil {
		resp := Response{
			Decision:      Deny,
			Diagnostics:   Diagnostics{Reasons: []PolicyID{}, Errors: errs},
			CorrelationID: req.CorrelationID,
		}
		a.log(req, resp)
		return resp
	}
	resp := Authorize(a.policies, entities, req)
	a.log(req, resp)
	return resp
}

// IsAuthorizedBatch decides each request independently, in parallel
// across available workers. Results are paired positionally with the
// requests; there is no ordering dependency between them.
func (a *Authorizer) IsAuthorizedBatch(reqs []Request, entities types.EntityMap) []Response {
	resps := make([]Response, len(reqs))
	if len(reqs) == 0 {
		return resps
	}
	if errs := a.validateEntities(entities); errs != nil {
		for i, req := range reqs {
			resps[i] = Response{
				Decision:      Deny,
				Diagnostics:   Diagnostics{Reasons: []PolicyID{}, Errors: errs},
				CorrelationID: req.CorrelationID,
			}
			a.log(req, resps[i])
		}
		return resps
	}

	workers := min(len(reqs), runtime.GOMAXPROCS(0))
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				resps[i] = Authorize(a.policies, entities, reqs[i])
				a.log(reqs[i], resps[i])
			}
		}()
	}
	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return resps
}

// validateEntities returns the entity validation errors, or nil when
// there is no schema or validation passes.
func (a *Authorizer) validateEntities(entities types.EntityMap) []string {
	if a.schema == nil {
		return nil
	}
	res := a.schema.ValidateEntities(entities)
	if res.Passed() {
		return nil
	}
	return res.Errors
}

func (a *Authorizer) log(req Request, resp Response) {
	if a.logger == nil {
		return
	}
	reasons := make([]string, len(resp.Diagnostics.Reasons))
	for i, r := range resp.Diagnostics.Reasons {
		reasons[i] = string(r)
	}
	a.logger.Info("authorization decision",
		slog.String("principal", req.Principal.String()),
		slog.String("action", req.Action.String()),
		slog.String("resource", req.Resource.String()),
		slog.String("decision", resp.Decision.String()),
		slog.Any("reasons", reasons),
		slog.Int("errors", len(resp.Diagnostics.Errors)),
		slog.String("correlation_id", req.CorrelationID),
	)
}
