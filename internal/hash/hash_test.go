package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// RFC 3720 test vector: 32 bytes of zeros
	assert.Equal(t, uint32(0x8a9136aa), CRC32C(make([]byte, 32)))

	assert.NotEqual(t, CRC32C([]byte("$c wff |- $.\n")), CRC32C([]byte("$c wff |- $.\r\n")))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("ax-1 $a |- ( ph -> ( ps -> ph ) ) $."))
	b := Fingerprint([]byte("ax-2 $a |- ( ph -> ( ps -> ph ) ) $."))
	assert.NotEqual(t, a, b)

	assert.Equal(t, a, Fingerprint([]byte("ax-1 $a |- ( ph -> ( ps -> ph ) ) $.")))

	assert.Equal(t, uint64(0xef46db3751d8e999), Fingerprint(nil))
}
