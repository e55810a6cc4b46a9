package core

import (
	"testing"

	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	// Well-known digests of the empty input
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(nil))
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", FingerprintBLAKE3(nil))

	content := []byte("use strict;\nmy $x = 1;\n")
	assert.Equal(t, Fingerprint(content), Fingerprint(append([]byte(nil), content...)), "deterministic")
	assert.NotEqual(t, Fingerprint(content), Fingerprint([]byte("use strict;\nmy $x = 2;\n")))
	assert.Len(t, Fingerprint(content), 64)
	assert.Len(t, FingerprintBLAKE3(content), 64)
}

func TestFingerprinterFor(t *testing.T) {
	content := []byte("<job/>")
	assert.Equal(t, Fingerprint(content), FingerprinterFor(schema.SHA256Algo)(content))
	assert.Equal(t, Fingerprint(content), FingerprinterFor("")(content))
	assert.Equal(t, FingerprintBLAKE3(content), FingerprinterFor(schema.BLAKE3Algo)(content))
}

func TestContentKey(t *testing.T) {
	assert.Equal(t, "ab/abcdef", contentKey("abcdef"))
	assert.Equal(t, "a", contentKey("a"))
}

func FuzzFingerprint(f *testing.F) {
	f.Add([]byte("print 1;"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, data []byte) {
		a, b := Fingerprint(data), Fingerprint(data)
		if a != b || len(a) != 64 {
			t.Fatalf("unstable fingerprint %q vs %q", a, b)
		}
	})
}
