package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/RomanPilyushin/Privatbank/internal/domain"
)

// CreateTaskRequest is the creation payload. Title and status are mandatory;
// description is optional.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Status      string `json:"status" binding:"required"`
}

// UpdateTaskRequest is the partial-update payload. Each field is a pointer so
// that "absent" (nil, leave untouched) is distinct from "set to empty".
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Status      *string `json:"status" binding:"omitempty"`
}

// BlankFieldMessages reports mandatory fields that are empty once trimmed.
// Gin's required tag only rejects the zero value "", so a whitespace-only
// title or status would otherwise slip through and be stored blank.
func (r CreateTaskRequest) BlankFieldMessages() map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(r.Title) == "" {
		out["title"] = "Title is mandatory"
	}
	if strings.TrimSpace(r.Status) == "" {
		out["status"] = "Status is mandatory"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// BlankFieldMessages rejects present-but-blank title or status on a partial
// update: absent (nil) fields are no-ops, but a provided value may not blank
// a mandatory field. Description stays optional and may be cleared.
func (r UpdateTaskRequest) BlankFieldMessages() map[string]string {
	out := make(map[string]string)
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		out["title"] = "Title is mandatory"
	}
	if r.Status != nil && strings.TrimSpace(*r.Status) == "" {
		out["status"] = "Status is mandatory"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type TaskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func TaskToResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
}

func TasksToResponses(list []domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = TaskToResponse(list[i])
	}
	return out
}

// ValidationMessages turns a gin binding error into a field -> message map.
// Non-validator errors (malformed JSON and the like) come back under "error".
func ValidationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"error": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		out[field] = messageFor(field, fe.Tag())
	}
	return out
}

func messageFor(field, tag string) string {
	switch {
	case field == "title" && tag == "required":
		return "Title is mandatory"
	case field == "title" && tag == "max":
		return "Title must be less than 100 characters"
	case field == "description" && tag == "max":
		return "Description must be less than 500 characters"
	case field == "status" && tag == "required":
		return "Status is mandatory"
	default:
		return "invalid value"
	}
}
