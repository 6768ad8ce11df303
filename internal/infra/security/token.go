package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomTokenGenerator produces URL-safe random strings, used for browser
// session ids.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	buf, err := RandomBytes(g.Size)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RandomBytes reads size bytes of entropy; size <= 0 means 32.
func RandomBytes(size int) ([]byte, error) {
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("token: entropy read failed: %w", err)
	}
	return buf, nil
}
