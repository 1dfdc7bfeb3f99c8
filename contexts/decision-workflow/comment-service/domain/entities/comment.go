package entities

import "time"

// Comment belongs to a decision. ParentID, when set, references a
// top-level comment on the same decision; replies cannot be nested
// further. Edited is set only by the author's own edit.
type Comment struct {
	CommentID  string
	TenantID   string
	DecisionID string
	AuthorID   string
	Content    string
	OptionID   string
	ParentID   string
	Edited     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Thread is a top-level comment with its replies in creation order.
type Thread struct {
	Comment Comment
	Replies []Comment
}
