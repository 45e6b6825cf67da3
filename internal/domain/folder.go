package domain

import "time"

type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FolderContent is one page of a folder listing. Folder is nil when the
// listing is for the owner's root level.
type FolderContent struct {
	Folder  *Folder  `json:"folder,omitempty"`
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}
