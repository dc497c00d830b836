package admin

import "time"

// AddAdminRequest is the payload for granting admin rights
type AddAdminRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// AdminResponse is the API representation of an admin set entry
type AdminResponse struct {
	UserID    int64     `json:"user_id"`
	AddedBy   *int64    `json:"added_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminResponseFromEntity converts entity to response
func AdminResponseFromEntity(a *AdminUser) *AdminResponse {
	resp := &AdminResponse{
		UserID:    a.UserID,
		CreatedAt: a.CreatedAt,
	}
	if a.AddedBy.Valid {
		addedBy := a.AddedBy.Int64
		resp.AddedBy = &addedBy
	}
	return resp
}
