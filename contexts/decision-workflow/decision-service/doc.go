// Package decisionservice implements the decision lifecycle inside the
// decision-workflow context.
//
// The module owns decision orchestration (create, discussion, deferral,
// escalation, resolution), SLA deadline computation, queue/overdue/
// escalation-candidate reads, and the atomic resolution cascade that
// unblocks dependent hypotheses and updates stakeholder aggregates. It
// keeps business rules in application/domain layers and isolates
// infrastructure concerns behind ports and adapters.
package decisionservice
