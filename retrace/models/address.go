package models

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// Address is a standard account address. Equality ignores the flags: the
// same account reached through a bounceable, non-bounceable or testnet-only
// string is the same Address.
type Address struct {
	Workchain   int32    `msgpack:"workchain"`
	Account     [32]byte `msgpack:"account"`
	Bounceable  bool     `msgpack:"bounceable"`
	TestnetOnly bool     `msgpack:"testnet_only"`
} // @name Address

// ParseAddress accepts the raw `workchain:hex` form and the flagged
// user-friendly form (base64url, or standard base64 as some explorers print it).
// A checksum mismatch or wrong length is a FormatError.
func ParseAddress(value string) (Address, error) {
	value = strings.TrimSpace(value)
	if wc, account, ok := strings.Cut(value, ":"); ok {
		if _, err := strconv.ParseInt(wc, 10, 32); err != nil {
			return Address{}, FormatError{Input: value, Reason: "invalid workchain"}
		}
		if len(account) != 64 {
			return Address{}, FormatError{Input: value, Reason: fmt.Sprintf("raw account id must be 64 hex characters, got %d", len(account))}
		}
		addr, err := address.ParseRawAddr(value)
		if err != nil {
			return Address{}, FormatError{Input: value, Reason: err.Error()}
		}
		return FromTonutils(addr).WithFlags(true, false), nil
	}
	if len(value) != 48 {
		return Address{}, FormatError{Input: value, Reason: fmt.Sprintf("user-friendly address must be 48 characters, got %d", len(value))}
	}

	addr, err := address.ParseAddr(value)
	if err != nil {
		value_url := strings.Replace(value, "+", "-", -1)
		value_url = strings.Replace(value_url, "/", "_", -1)
		addr, err = address.ParseAddr(value_url)
	}
	if err != nil {
		return Address{}, FormatError{Input: value, Reason: err.Error()}
	}
	return FromTonutils(addr), nil
}

func FromTonutils(addr *address.Address) Address {
	res := Address{
		Workchain:   addr.Workchain(),
		Bounceable:  addr.IsBounceable(),
		TestnetOnly: addr.IsTestnetOnly(),
	}
	copy(res.Account[:], addr.Data())
	return res
}

func (a Address) Tonutils() *address.Address {
	data := make([]byte, len(a.Account))
	copy(data, a.Account[:])
	addr := address.NewAddress(0, byte(a.Workchain), data)
	addr.SetBounce(a.Bounceable)
	addr.SetTestnetOnly(a.TestnetOnly)
	return addr
}

func (a Address) Equal(other Address) bool {
	return a.Workchain == other.Workchain && bytes.Equal(a.Account[:], other.Account[:])
}

func (a Address) IsZero() bool {
	return a.Workchain == 0 && a.Account == [32]byte{}
}

// WithFlags returns a copy of the address rendered with the given flags.
func (a Address) WithFlags(bounceable bool, testnetOnly bool) Address {
	a.Bounceable = bounceable
	a.TestnetOnly = testnetOnly
	return a
}

// String returns the flagged user-friendly form.
func (a Address) String() string {
	return a.Tonutils().String()
}

// Raw returns `workchain:HEX` in the same form the index database stores.
func (a Address) Raw() string {
	return fmt.Sprintf("%d:%s", a.Workchain, strings.ToUpper(hex.EncodeToString(a.Account[:])))
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	res, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = res
	return nil
}
