package model

import "time"

// Todo is a task owned by a single user
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	Complete    bool      `json:"complete"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTodoRequest is used for creating a new todo. Any owner in the body is ignored.
type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required,min=3"`
	Description string `json:"description" binding:"required,min=3,max=100"`
	Priority    int    `json:"priority" binding:"required,gte=1,lte=5"`
	Complete    *bool  `json:"complete"`
}

// UpdateTodoRequest carries a partial update. Nil title, description or
// priority leave the stored value alone. Complete is always written and
// defaults to false when omitted.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3"`
	Description *string `json:"description,omitempty" binding:"omitempty,min=3,max=100"`
	Priority    *int    `json:"priority,omitempty" binding:"omitempty,gte=1,lte=5"`
	Complete    *bool   `json:"complete,omitempty"`
}

// AdminTodoFilters narrows the unscoped admin listing
type AdminTodoFilters struct {
	OwnerID  *int
	Complete *bool
	Priority *int
}
