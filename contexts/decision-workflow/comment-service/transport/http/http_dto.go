package http

// DTOs for the comment-service HTTP surface.

type CreateCommentRequest struct {
	Content  string `json:"content"`
	OptionID string `json:"option_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type EditCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	CommentID  string `json:"comment_id"`
	TenantID   string `json:"tenant_id"`
	DecisionID string `json:"decision_id"`
	AuthorID   string `json:"author_id"`
	Content    string `json:"content"`
	OptionID   string `json:"option_id,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	Edited     bool   `json:"edited"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type ThreadResponse struct {
	Comment CommentResponse   `json:"comment"`
	Replies []CommentResponse `json:"replies"`
}

type ThreadListResponse struct {
	Items []ThreadResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
