package uid

import "github.com/google/uuid"

// UUID generates time-ordered identifiers, used to tag flow sessions in logs.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a v7 UUID string. v7 can fail only when the random source
// does; a random v4 keeps the caller supplied either way.
func (u *UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
