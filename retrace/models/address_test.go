package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleAddrBounceable    = "EQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A_CZEtXCNICq_"
	sampleAddrNonBounceable = "UQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A_CZEtXCNIHd6"
	sampleAddrTestnet       = "kQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A_CZEtXCNIJE1"
	sampleAddrRaw           = "0:DAE153A74D894BBC32748198CD626E4F5DF4A69AD2FA56CE80FC2644B5708D20"
)

func TestParseAddressForms(t *testing.T) {
	bounceable, err := ParseAddress(sampleAddrBounceable)
	require.NoError(t, err)
	assert.Equal(t, int32(0), bounceable.Workchain)
	assert.True(t, bounceable.Bounceable)
	assert.False(t, bounceable.TestnetOnly)
	assert.Equal(t, sampleAddrRaw, bounceable.Raw())
	assert.Equal(t, sampleAddrBounceable, bounceable.String())

	nonBounceable, err := ParseAddress(sampleAddrNonBounceable)
	require.NoError(t, err)
	assert.False(t, nonBounceable.Bounceable)

	testnet, err := ParseAddress(sampleAddrTestnet)
	require.NoError(t, err)
	assert.True(t, testnet.TestnetOnly)

	raw, err := ParseAddress(sampleAddrRaw)
	require.NoError(t, err)
	assert.Equal(t, sampleAddrBounceable, raw.String())

	lowerRaw, err := ParseAddress("0:dae153a74d894bbc32748198cd626e4f5df4a69ad2fa56ce80fc2644b5708d20")
	require.NoError(t, err)

	for _, other := range []Address{nonBounceable, testnet, raw, lowerRaw} {
		assert.True(t, bounceable.Equal(other), other.String())
	}
	assert.Equal(t, sampleAddrNonBounceable, bounceable.WithFlags(false, false).String())
}

func TestParseAddressStdBase64(t *testing.T) {
	// some explorers print the friendly form with the standard alphabet
	addr, err := ParseAddress("EQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A/CZEtXCNICq/")
	require.NoError(t, err)
	assert.Equal(t, sampleAddrRaw, addr.Raw())
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	for _, value := range []string{
		"",
		"EQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A_CZEtXCNICq",
		"EQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6A_CZEtXCNICqA",
		"EQDa4VOnTYlLvDJ0gZjNYm5PXfSmmtL6Vs6B_CZEtXCNICq_",
		"0:DAE153",
		"zz:DAE153A74D894BBC32748198CD626E4F5DF4A69AD2FA56CE80FC2644B5708D20",
	} {
		_, err := ParseAddress(value)
		var formatErr FormatError
		assert.True(t, errors.As(err, &formatErr), "expected FormatError for %q, got %v", value, err)
	}
}

func TestAddressMasterchain(t *testing.T) {
	addr, err := ParseAddress("-1:3333333333333333333333333333333333333333333333333333333333333333")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), addr.Workchain)

	back, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.True(t, addr.Equal(back))
	assert.Equal(t, int32(-1), back.Workchain)
}

func TestAddressJSON(t *testing.T) {
	addr, err := ParseAddress(sampleAddrRaw)
	require.NoError(t, err)
	data, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+sampleAddrBounceable+`"`, string(data))

	var back Address
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, addr.Equal(back))
}
