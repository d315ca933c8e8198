package engine

import "github.com/google/uuid"

// generateID returns a random session id.
func generateID() string {
	return uuid.NewString()
}
