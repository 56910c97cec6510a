package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh record id: a random UUID, or a timestamp plus random
// suffix when UUID generation fails.
func NewID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("%d-%x", time.Now().UnixMilli(), rand.Int63())
}
