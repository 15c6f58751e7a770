package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/google/uuid"
)

// StoredFile describes a multipart upload persisted to local disk.
type StoredFile struct {
	OriginalName string
	Ext          string
	Path         string
	URL          string
}

// UploadStore writes multipart uploads under a local directory and hands
// back public URLs. File names are regenerated; the original name is kept
// only as metadata.
type UploadStore struct {
	dir     string
	baseURL string
}

func NewUploadStore(cfg config.UploadConfig) *UploadStore {
	return &UploadStore{dir: cfg.Dir, baseURL: cfg.BaseURL}
}

func (s *UploadStore) Dir() string {
	return s.dir
}

// Save stores one upload under a generated name prefixed by kind
// ("avatar", "group-icon", "document").
func (s *UploadStore) Save(fileHeader *multipart.FileHeader, kind string) (*StoredFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	ext := filepath.Ext(fileHeader.Filename)
	name := fmt.Sprintf("%s-%s%s", kind, uuid.New().String(), ext)
	dst := filepath.Join(s.dir, name)

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	if _, err = io.Copy(out, src); err != nil {
		os.Remove(dst)
		return nil, err
	}

	return &StoredFile{
		OriginalName: fileHeader.Filename,
		Ext:          ext,
		Path:         dst,
		URL:          s.baseURL + "/" + name,
	}, nil
}
