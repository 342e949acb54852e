package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"campushub/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxBytes caps a single uploaded file.
const DefaultMaxBytes int64 = 5 << 20

// Uploads stores user images on local disk. Files are never removed when
// the owning row is deleted.
type Uploads struct {
	Dir      string
	MaxBytes int64
}

func NewUploads(dir string, maxBytes int64) Uploads {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Uploads{Dir: dir, MaxBytes: maxBytes}
}

// SaveImages stores every file or none. Returned names are relative to Dir.
func (u Uploads) SaveImages(field string, files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := u.SaveImage(field, fh)
		if err != nil {
			u.Remove(names...)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// SaveImage validates size and sniffed content type before writing the file.
func (u Uploads) SaveImage(field string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", domain.ValidationError{Field: field, Msg: "file is required"}
	}
	max := u.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	if fh.Size > max {
		return "", domain.ValidationError{Field: field, Msg: fmt.Sprintf("%s exceeds %d bytes", fh.Filename, max)}
	}

	src, err := fh.Open()
	if err != nil {
		return "", domain.ValidationError{Field: field, Msg: "cannot read upload", Err: err}
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", domain.ValidationError{Field: field, Msg: "cannot read upload", Err: err}
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", domain.ValidationError{Field: field, Msg: fmt.Sprintf("%s is not an image", fh.Filename)}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", domain.InternalError{Msg: "rewind upload", Err: err}
	}

	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", domain.InternalError{Msg: "create upload dir", Err: err}
	}
	name := uuid.NewString() + mt.Extension()
	dst, err := os.OpenFile(filepath.Join(u.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", domain.InternalError{Msg: "create upload file", Err: err}
	}
	// The header size is client supplied; the copy enforces the cap again.
	n, err := io.Copy(dst, io.LimitReader(src, max+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		u.Remove(name)
		return "", domain.InternalError{Msg: "write upload file", Err: err}
	}
	if n > max {
		u.Remove(name)
		return "", domain.ValidationError{Field: field, Msg: fmt.Sprintf("%s exceeds %d bytes", fh.Filename, max)}
	}
	return name, nil
}

// Remove deletes stored files, ignoring missing ones.
func (u Uploads) Remove(names ...string) {
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, `/\`) {
			continue
		}
		_ = os.Remove(filepath.Join(u.Dir, n))
	}
}
