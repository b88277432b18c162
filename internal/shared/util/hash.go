package util

import (
	"crypto/sha256"
	"encoding/hex"
)

const userKeyNamespace = "resumeflow/user/"

// HashUserKey maps a user id to a stable 32-character hex prefix for object
// keys, so storage paths never reveal the identity provider's subject.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userKeyNamespace + userID))
	return hex.EncodeToString(sum[:16])
}
