package domain

import (
	"time"

	"github.com/google/uuid"
)

// Share is a public link to a single file. The token is the entire
// credential: anyone holding it may read the file until the share is
// revoked.
type Share struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Token     string    `json:"token" db:"token"`
	FileUUID  uuid.UUID `json:"file_uuid" db:"file_uuid"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
