package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSource(t *testing.T) {
	text, err := DecodeSource([]byte("class A { }"))
	require.NoError(t, err)
	assert.Equal(t, "class A { }", text)

	text, err = DecodeSource(append([]byte{0xEF, 0xBB, 0xBF}, "Module M\r\nEnd Module"...))
	require.NoError(t, err)
	assert.Equal(t, "Module M\r\nEnd Module", text)
}

func TestDecodeSourceUTF16(t *testing.T) {
	le := []byte{0xFF, 0xFE, 'c', 0, 'l', 0, 'a', 0, 's', 0, 's', 0, ' ', 0, 0xE9, 0}
	text, err := DecodeSource(le)
	require.NoError(t, err)
	assert.Equal(t, "class é", text)

	be := []byte{0xFE, 0xFF, 0, 'c', 0, 'l', 0, 'a', 0, 's', 0, 's'}
	text, err = DecodeSource(be)
	require.NoError(t, err)
	assert.Equal(t, "class", text)
}

func TestDecodeSourceRejectsBinary(t *testing.T) {
	tests := map[string][]byte{
		"pe":       append([]byte("MZ"), 0x90, 0x00, 0x03),
		"zip":      {0x50, 0x4B, 0x03, 0x04, 0x14},
		"nul":      []byte("class A { }\x00\x00"),
		"controls": {1, 2, 3, 4, 'a', 5, 6},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSource(data)
			assert.ErrorIs(t, err, ErrBinary)
		})
	}
}

func TestDecodeSourceRejectsInvalidUTF8(t *testing.T) {
	_, err := DecodeSource([]byte("class A { string s = \"\xff\xfe\xfd\"; }"))
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("line\tone\r\nline two\f")))
	assert.True(t, IsBinary([]byte{0x01, 0x02, 'a'}))
}
