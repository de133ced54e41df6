package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const schemaVersion = 1

// StoredFile describes one archived upload
type StoredFile struct {
	Role       string    `json:"role"`
	FileName   string    `json:"fileName"`
	StoredAs   string    `json:"storedAs"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type archiveIndex struct {
	SchemaVersion int                   `json:"schemaVersion"`
	Files         map[string]StoredFile `json:"files"`
}

// Archive keeps the latest upload per role on disk so a restart does not force
// the user to upload the workbooks again. One slot per role, a re-upload
// overwrites the previous file.
type Archive struct {
	dir string

	mu    sync.Mutex
	index archiveIndex
}

func NewArchive(dir string) (*Archive, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive dir is required")
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	a := &Archive{
		dir: dir,
		index: archiveIndex{
			SchemaVersion: schemaVersion,
			Files:         map[string]StoredFile{},
		},
	}

	if fileExists(a.indexPath()) {
		if err := readJSON(a.indexPath(), &a.index); err != nil {
			return nil, fmt.Errorf("read upload index: %w", err)
		}
		if a.index.Files == nil {
			a.index.Files = map[string]StoredFile{}
		}
	}
	return a, nil
}

func (a *Archive) indexPath() string {
	return filepath.Join(a.dir, "uploads.json")
}

// Save archives content as the current workbook for role
func (a *Archive) Save(role, fileName string, content []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	storedAs := role + ".xlsx"
	if err := os.WriteFile(filepath.Join(a.dir, storedAs), content, 0644); err != nil {
		return err
	}

	a.index.Files[role] = StoredFile{
		Role:       role,
		FileName:   fileName,
		StoredAs:   storedAs,
		UploadedAt: time.Now(),
	}
	return writeJSONAtomic(a.indexPath(), a.index)
}

// Stored lists the archived uploads, ordered by role
func (a *Archive) Stored() []StoredFile {
	a.mu.Lock()
	defer a.mu.Unlock()

	files := make([]StoredFile, 0, len(a.index.Files))
	for _, f := range a.index.Files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Role < files[j].Role })
	return files
}

// Open reads an archived workbook back
func (a *Archive) Open(role string) (content []byte, fileName string, ok bool, err error) {
	a.mu.Lock()
	stored, found := a.index.Files[role]
	a.mu.Unlock()

	if !found {
		return nil, "", false, nil
	}

	content, err = os.ReadFile(filepath.Join(a.dir, stored.StoredAs))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", false, nil
		}
		return nil, "", false, err
	}
	return content, stored.FileName, true, nil
}
