// Package voteservice records per-decision, per-person votes with upsert
// semantics and exposes a count-by-option summary.
package voteservice
