package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key creates a deterministic cache key from a canonical state signature.
// Signatures can be long (one segment per accession/marker block), so they
// are hashed down to a fixed-size hex digest with a readable prefix.
func Key(prefix, signature string) string {
	if prefix == "" {
		prefix = "fit_"
	}

	h := sha256.New()
	h.Write([]byte(signature))
	hash := hex.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s%s", prefix, hash[:32])
}
