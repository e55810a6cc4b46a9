package core

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/huangsam/legacylens/schema"
	"github.com/zeebo/blake3"
)

// Fingerprinter maps content to a hex digest used as the dedup key.
type Fingerprinter func(content []byte) string

// Fingerprint returns the lowercase hex SHA-256 digest of content.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FingerprintBLAKE3 returns the lowercase hex BLAKE3-256 digest of content.
func FingerprintBLAKE3(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FingerprinterFor selects the digest for an algorithm, defaulting to SHA-256.
func FingerprinterFor(algo schema.FingerprintAlgo) Fingerprinter {
	if algo == schema.BLAKE3Algo {
		return FingerprintBLAKE3
	}
	return Fingerprint
}

// contentKey is the content-store key for a fingerprint.
func contentKey(fp string) string {
	if len(fp) < 2 {
		return fp
	}
	return fp[:2] + "/" + fp
}
