package block

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/deltadb/model"
)

func TestZstdCoderPool(t *testing.T) {
	enc, err := getZstdEncoder()
	require.NoError(t, err)
	require.NotNil(t, enc)
	putZstdEncoder(enc)

	dec, err := getZstdDecoder()
	require.NoError(t, err)
	require.NotNil(t, dec)
	putZstdDecoder(dec)

	data := bytes.Repeat([]byte("deltadb"), 128)
	for range 3 {
		frame, err := compressPayload(data, model.CompressionZSTD)
		require.NoError(t, err)

		got, err := decompressPayload(frame, model.CompressionZSTD)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestDecompressPayload_CorruptFrame(t *testing.T) {
	frame := make([]byte, frameHeaderSize+4)
	binary.LittleEndian.PutUint32(frame[0:], 16)
	binary.LittleEndian.PutUint32(frame[4:], 4)
	copy(frame[frameHeaderSize:], []byte{0xde, 0xad, 0xbe, 0xef})

	for _, c := range []model.Compression{model.CompressionLZ4, model.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			_, err := decompressPayload(frame, c)
			assert.Error(t, err)
		})
	}

	_, err := decompressPayload(frame[:4], model.CompressionZSTD)
	assert.Error(t, err)
}
