package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type File struct {
	UUID       uuid.UUID `json:"uuid" db:"uuid"`
	Name       string    `json:"name" db:"name"`
	MIMEType   string    `json:"mime_type" db:"mime_type"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	FolderID   *int64    `json:"folder_id,omitempty" db:"folder_id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	ContentKey string    `json:"-" db:"content_key"`
	IsPublic   bool      `json:"is_public" db:"is_public"`
	ShareToken *string   `json:"share_token,omitempty" db:"share_token"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FileDownload carries a file's metadata together with a reader over its
// content. The caller owns closing Body.
type FileDownload struct {
	File *File
	Body io.ReadCloser
}
