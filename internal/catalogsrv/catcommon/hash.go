package catcommon

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/anand-gl/jsoncanonicalizer"
)

// HexEncodedSHA512 returns the SHA-512 hash of data as a hex string.
// Import payloads are content-addressed by this hash.
func HexEncodedSHA512(data []byte) string {
	hash := sha512.Sum512(data)
	return hex.EncodeToString(hash[:])
}

// NormalizeJSON returns the RFC 8785 canonical form of the JSON so that
// semantically identical payloads hash identically.
func NormalizeJSON(data []byte) ([]byte, error) {
	return jsoncanonicalizer.Transform(data)
}
