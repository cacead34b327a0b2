package skills

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores extraction results keyed by the masked resume text.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, skills []string) error
}

func CacheKey(maskedText string) string {
	sum := sha256.Sum256([]byte(maskedText))
	return hex.EncodeToString(sum[:])
}
