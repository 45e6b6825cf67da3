// Package memory holds map-backed implementations of the service store
// interfaces. They carry the same atomicity guarantees as the Postgres
// repositories (one mutex in place of row locks) and back the test suite
// and dev mode.
package memory

import (
	"sort"
	"sync"

	"vaultdrive/internal/domain"
)

// Stores bundles one coherent in-memory data set: quota, folders, files and
// shares all share the same lock, mirroring how the Postgres repositories
// share one database.
type Stores struct {
	mu sync.Mutex

	quotas       map[string]*domain.StorageQuota
	folders      map[int64]*domain.Folder
	files        map[string]*domain.File // keyed by UUID string
	sharesByTok  map[string]*domain.Share
	sharesByFile map[string]*domain.Share

	nextFolderID int64
	nextQuotaID  int64
}

func NewStores() *Stores {
	return &Stores{
		quotas:       make(map[string]*domain.StorageQuota),
		folders:      make(map[int64]*domain.Folder),
		files:        make(map[string]*domain.File),
		sharesByTok:  make(map[string]*domain.Share),
		sharesByFile: make(map[string]*domain.Share),
	}
}

func (s *Stores) Quotas() *QuotaStore   { return &QuotaStore{s} }
func (s *Stores) Folders() *FolderStore { return &FolderStore{s} }
func (s *Stores) Files() *FileStore     { return &FileStore{s} }
func (s *Stores) Shares() *ShareStore   { return &ShareStore{s} }

// sortFolders orders like the Postgres ORDER BY name, id.
func sortFolders(folders []domain.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].ID < folders[j].ID
	})
}

// sortFiles orders like the Postgres ORDER BY name, uuid.
func sortFiles(files []domain.File) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].UUID.String() < files[j].UUID.String()
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
