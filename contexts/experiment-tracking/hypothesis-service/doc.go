// Package hypothesisservice implements the hypothesis lifecycle inside
// the experiment-tracking context.
//
// A hypothesis is a unit of experimental work whose progress can be gated
// behind a pending decision. The module owns the guarded status machine,
// blocking/unblocking with reasons, lifecycle timestamp stamping and the
// terminal conclusion flow with experiment results.
package hypothesisservice
