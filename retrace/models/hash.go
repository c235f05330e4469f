package models

import (
	b64 "encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Hash is a 32-byte transaction, block or state hash. Hex, base64 and
// base64url strings are views of the same value.
type Hash [32]byte // @name Hash

type HashEncoding int

const (
	HashAny HashEncoding = iota
	HashHex
	HashBase64
	HashBase64URL
)

func (e HashEncoding) String() string {
	switch e {
	case HashHex:
		return "hex"
	case HashBase64:
		return "base64"
	case HashBase64URL:
		return "base64url"
	default:
		return "any"
	}
}

// ParseHash accepts 64 hex chars (optionally 0x-prefixed) or a 32-byte value
// in standard or URL-safe base64, padded or not.
func ParseHash(value string) (Hash, error) {
	return ParseHashAs(value, HashAny)
}

// ParseHashAs is ParseHash restricted to one encoding unless hint is HashAny.
func ParseHashAs(value string, hint HashEncoding) (Hash, error) {
	var h Hash
	value = strings.TrimSpace(value)

	if hint == HashAny || hint == HashHex {
		raw := value
		if len(raw) == 66 && strings.HasPrefix(raw, "0x") {
			raw = raw[2:]
		}
		if len(raw) == 64 {
			if res, err := hex.DecodeString(raw); err == nil {
				copy(h[:], res)
				return h, nil
			}
		}
		if hint == HashHex {
			return h, FormatError{Input: value, Reason: "expected 64 hex characters"}
		}
	}

	if len(value) == 43 || len(value) == 44 {
		var encodings []*b64.Encoding
		std := hint == HashAny || hint == HashBase64
		url := hint == HashAny || hint == HashBase64URL
		if len(value) == 44 {
			if std {
				encodings = append(encodings, b64.StdEncoding)
			}
			if url {
				encodings = append(encodings, b64.URLEncoding)
			}
		} else {
			if std {
				encodings = append(encodings, b64.RawStdEncoding)
			}
			if url {
				encodings = append(encodings, b64.RawURLEncoding)
			}
		}
		for _, enc := range encodings {
			if res, err := enc.DecodeString(value); err == nil && len(res) == len(h) {
				copy(h[:], res)
				return h, nil
			}
		}
	}
	return h, FormatError{Input: value, Reason: fmt.Sprintf("not a 32-byte hash (%s)", hint)}
}

func (h Hash) Encode(enc HashEncoding) string {
	switch enc {
	case HashHex:
		return h.Hex()
	case HashBase64URL:
		return h.Base64URL()
	default:
		return h.Base64()
	}
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Base64() string {
	return b64.StdEncoding.EncodeToString(h[:])
}

func (h Hash) Base64URL() string {
	return b64.URLEncoding.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Base64()
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Base64()), nil
}

func (h *Hash) UnmarshalText(data []byte) error {
	res, err := ParseHash(string(data))
	if err != nil {
		return err
	}
	*h = res
	return nil
}

// MarshalJSON implements json.Marshaler interface
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Base64())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return h.UnmarshalText([]byte(s))
}

// EncodeMsgpack implements msgpack.CustomEncoder interface
func (h Hash) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBytes(h[:])
}

// DecodeMsgpack implements msgpack.CustomDecoder interface
func (h *Hash) DecodeMsgpack(dec *msgpack.Decoder) error {
	bytes, err := dec.DecodeBytes()
	if err != nil {
		return err
	}

	if len(bytes) != 32 {
		return fmt.Errorf("invalid hash length: expected 32 bytes, got %d", len(bytes))
	}

	copy(h[:], bytes)
	return nil
}
