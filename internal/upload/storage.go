package upload

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)
)

// Storage persists uploaded payment screenshots on local disk and
// knows how to build their public URLs. Filenames combine a millisecond
// timestamp, a random suffix and the sanitized original name, so
// collisions are negligible.
type Storage struct {
	Dir        string
	PublicPath string
}

func NewStorage(dir, publicPath string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Storage{Dir: dir, PublicPath: publicPath}, nil
}

// Save writes the uploaded file under a generated name and returns
// that name.
func (s *Storage) Save(file multipart.File, originalName string) (string, error) {
	name := GenerateFilename(originalName)

	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return name, nil
}

// PublicURL builds the externally reachable URL for a stored file from
// the incoming request's scheme and host.
func (s *Storage) PublicURL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s/%s", scheme, r.Host, s.PublicPath, filename)
}

// GenerateFilename sanitizes the original name and prefixes it with a
// timestamp and random suffix.
func GenerateFilename(originalName string) string {
	safeName := whitespace.ReplaceAllString(originalName, "-")
	safeName = unsafeChars.ReplaceAllString(safeName, "")

	randomNum, _ := rand.Int(rand.Reader, big.NewInt(1e9))
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), randomNum.Int64(), safeName)
}
