// Package cedar provides an embeddable policy authorization engine:
// given a request (principal, action, resource, context) and a set of
// declarative permit/forbid policies, it decides whether the request is
// allowed and explains which policies determined the outcome.
//
// A PolicySet and an EntityMap are parsed or built once and reused
// across arbitrarily many authorization calls; both are immutable after
// construction and safe for concurrent readers.
//
//	ps, err := cedar.NewPolicySetFromBytes("policy.cedar", []byte(`
//		permit (
//			principal == User::"alice",
//			action == Action::"view",
//			resource in Album::"vacation"
//		);
//	`))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp := cedar.Authorize(ps, entities, cedar.Request{
//		Principal: types.NewEntityUID("User", "alice"),
//		Action:    types.NewEntityUID("Action", "view"),
//		Resource:  types.NewEntityUID("Photo", "9000"),
//	})
//	if resp.Decision == cedar.Allow {
//		// ...
//	}
//
// Policies round-trip between Cedar source text and the JSON policy
// format; both produce the same in-memory representation.
package cedar
