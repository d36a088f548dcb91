package helper

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarURL builds the deterministic placeholder avatar for an email.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}
