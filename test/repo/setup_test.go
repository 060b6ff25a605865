package repo_test

import (
	"crypto/rand"
	"encoding/hex"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
