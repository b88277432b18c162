package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"resumeflow/internal/shared/util"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Object describes a stored artifact.
type Object struct {
	Key         string
	ContentType string
	Size        int64
}

// ObjectStore saves generated artifacts under a per-user namespace.
type ObjectStore interface {
	Put(ctx context.Context, userID, fileName, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, Object, error)
}

// OwnerPrefix is the key prefix for everything stored on behalf of userID.
func OwnerPrefix(userID string) string {
	return util.HashUserKey(userID) + "/"
}

// NewKey allocates a fresh key for fileName in userID's namespace. It also
// returns the cleaned file name the key ends with.
func NewKey(userID, fileName string) (key, name string, err error) {
	if strings.TrimSpace(userID) == "" {
		return "", "", errors.New("object owner is required")
	}
	name, err = util.SanitizeFileName(fileName)
	if err != nil {
		return "", "", fmt.Errorf("object name %q: %w", fileName, err)
	}
	return OwnerPrefix(userID) + uuid.NewString() + "_" + name, name, nil
}

// OwnedBy reports whether key lives in userID's namespace.
func OwnedBy(key, userID string) bool {
	if userID == "" || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(key, "/"), OwnerPrefix(userID))
}
