package assignment

import "time"

// SubmitRequest for POST /assignments/{id}/submit
type SubmitRequest struct {
	Proof string `json:"proof" validate:"required,max=512"`
}

// ReviewRequest for POST /assignments/{id}/review
type ReviewRequest struct {
	Verdict string `json:"verdict" validate:"required,verdict"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// AssignmentResponse represents an assignment in API responses
type AssignmentResponse struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	Proof     *string   `json:"proof,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentResponseFromEntity converts entity to response DTO
func AssignmentResponseFromEntity(a *Assignment) *AssignmentResponse {
	resp := &AssignmentResponse{
		ID:        a.ID,
		TaskID:    a.TaskID,
		UserID:    a.UserID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Proof.Valid {
		resp.Proof = &a.Proof.String
	}
	if a.Comment.Valid {
		resp.Comment = &a.Comment.String
	}
	return resp
}
