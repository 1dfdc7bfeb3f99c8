package errors

import "errors"

var (
	ErrInvalidCommentInput = errors.New("invalid comment input")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrDecisionNotFound    = errors.New("decision not found")
	ErrParentNotFound      = errors.New("parent comment not found")
	ErrNestedReply         = errors.New("replies cannot be nested")
	ErrNotCommentAuthor    = errors.New("only the author may modify a comment")
)
