package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	sampleHashHex       = "3e5f49798de239da5d8f80b4dc300204d37613e4203a3f7b877c04a88c81856b"
	sampleHashBase64    = "Pl9JeY3iOdpdj4C03DACBNN2E+QgOj97h3wEqIyBhWs="
	sampleHashBase64URL = "Pl9JeY3iOdpdj4C03DACBNN2E-QgOj97h3wEqIyBhWs="
)

func TestParseHashEncodings(t *testing.T) {
	fromHex, err := ParseHash(sampleHashHex)
	require.NoError(t, err)

	for _, value := range []string{
		sampleHashBase64,
		sampleHashBase64URL,
		"0x" + sampleHashHex,
		"3E5F49798DE239DA5D8F80B4DC300204D37613E4203A3F7B877C04A88C81856B",
		"Pl9JeY3iOdpdj4C03DACBNN2E+QgOj97h3wEqIyBhWs",
	} {
		h, err := ParseHash(value)
		require.NoError(t, err, value)
		assert.Equal(t, fromHex, h, value)
	}
	assert.Equal(t, sampleHashBase64, fromHex.Base64())
	assert.Equal(t, sampleHashBase64URL, fromHex.Base64URL())
	assert.Equal(t, sampleHashHex, fromHex.Hex())
}

func TestHashRoundTrip(t *testing.T) {
	hashes := []Hash{{}, {0xff, 0xfe, 0xfb}, {}}
	for i := range hashes[2] {
		hashes[2][i] = byte(i * 7)
	}
	for _, h := range hashes {
		for _, enc := range []HashEncoding{HashHex, HashBase64, HashBase64URL} {
			text := h.Encode(enc)
			back, err := ParseHashAs(text, enc)
			require.NoError(t, err, text)
			assert.Equal(t, h, back, enc.String())

			back, err = ParseHash(text)
			require.NoError(t, err, text)
			assert.Equal(t, h, back, enc.String())
		}
	}
}

func TestParseHashRejectsMalformed(t *testing.T) {
	for _, value := range []string{
		"",
		"abc",
		sampleHashHex[:63],
		sampleHashHex + "00",
		"zz5f49798de239da5d8f80b4dc300204d37613e4203a3f7b877c04a88c81856b",
		"Pl9JeY3iOdpdj4C03DACBNN2E+QgOj97h3wEqIyBh!s=",
		"Pl9JeY3iOdpdj4C03DACBNN2E+QgOj97h3wEqIyBhWs==",
	} {
		_, err := ParseHash(value)
		var formatErr FormatError
		assert.True(t, errors.As(err, &formatErr), "expected FormatError for %q, got %v", value, err)
	}
}

func TestParseHashHintRestricts(t *testing.T) {
	_, err := ParseHashAs(sampleHashBase64, HashHex)
	assert.Error(t, err)
	_, err = ParseHashAs(sampleHashBase64URL, HashBase64)
	assert.Error(t, err)
	_, err = ParseHashAs(sampleHashHex, HashBase64URL)
	assert.Error(t, err)
}

func TestHashCodecs(t *testing.T) {
	h, err := ParseHash(sampleHashHex)
	require.NoError(t, err)

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `"`+sampleHashBase64+`"`, string(data))

	var fromJSON Hash
	require.NoError(t, json.Unmarshal([]byte(`"`+sampleHashHex+`"`), &fromJSON))
	assert.Equal(t, h, fromJSON)

	packed, err := msgpack.Marshal(h)
	require.NoError(t, err)
	var fromMsgpack Hash
	require.NoError(t, msgpack.Unmarshal(packed, &fromMsgpack))
	assert.Equal(t, h, fromMsgpack)

	short, err := msgpack.Marshal([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Error(t, msgpack.Unmarshal(short, &fromMsgpack))
}
