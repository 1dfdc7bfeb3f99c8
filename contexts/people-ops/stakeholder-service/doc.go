// Package stakeholderservice tracks per-person decision workload
// aggregates: pending, completed and escalated counters plus a running
// mean response time. Counters are mutated only by decision lifecycle
// callbacks; leaderboards are pure read-side sorts over the aggregates.
package stakeholderservice
