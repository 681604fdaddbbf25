package projects

import "time"

// Project is a game/application registered with the backend. Telemetry,
// roles and user memberships are all scoped to a project.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	APIKey      string    `json:"apiKey"`
	IsActive    bool      `json:"isActive"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
}

// UpdateRequest is a partial update; unset fields are left untouched by the
// backend.
type UpdateRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// NameOf returns the name of the project with the given ID, or
// "Unknown Project".
func NameOf(list []Project, projectID string) string {
	for _, p := range list {
		if p.ID == projectID {
			return p.Name
		}
	}
	return "Unknown Project"
}
