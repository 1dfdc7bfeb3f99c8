package entities

import "time"

type VoteOption string

const (
	VoteApprove       VoteOption = "approve"
	VoteReject        VoteOption = "reject"
	VoteAbstain       VoteOption = "abstain"
	VoteNeedsMoreInfo VoteOption = "needs_more_info"
)

// VoteOptions is the closed option set in declared order; summaries
// zero-fill every entry.
var VoteOptions = []VoteOption{VoteApprove, VoteReject, VoteAbstain, VoteNeedsMoreInfo}

func IsValidVoteOption(option VoteOption) bool {
	for _, candidate := range VoteOptions {
		if candidate == option {
			return true
		}
	}
	return false
}

// Vote is unique per (tenant, decision, person); casting again
// overwrites the option and comment in place.
type Vote struct {
	VoteID     string
	TenantID   string
	DecisionID string
	PersonID   string
	Vote       VoteOption
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Summary struct {
	DecisionID string
	Counts     map[VoteOption]int
	Total      int
}
