package models

import (
	"fmt"
)

type Network string // @name Network

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

func NetworkOf(testnet bool) Network {
	if testnet {
		return Testnet
	}
	return Mainnet
}

func (n Network) IsTestnet() bool {
	return n == Testnet
}

func ParseNetwork(value string) (Network, error) {
	switch Network(value) {
	case Mainnet, Testnet:
		return Network(value), nil
	}
	return "", FormatError{Input: value, Reason: "network must be mainnet or testnet"}
}

// TxLocator fully determines one on-chain transaction. Values are immutable
// and passed by copy.
type TxLocator struct {
	Lt      uint64  `json:"lt,string" msgpack:"lt"`
	Hash    Hash    `json:"hash" msgpack:"hash"`
	Address Address `json:"address" msgpack:"address"`
	Network Network `json:"network" msgpack:"network"`
} // @name TxLocator

func NewTxLocator(lt uint64, hash Hash, addr Address, network Network) (TxLocator, error) {
	if lt == 0 {
		return TxLocator{}, FormatError{Input: fmt.Sprintf("%d:%s", lt, hash.Base64()), Reason: "logical time must be positive"}
	}
	if network != Mainnet && network != Testnet {
		return TxLocator{}, FormatError{Input: string(network), Reason: "network must be mainnet or testnet"}
	}
	return TxLocator{Lt: lt, Hash: hash, Address: addr, Network: network}, nil
}

func (l TxLocator) Equal(other TxLocator) bool {
	return l.Lt == other.Lt && l.Hash == other.Hash && l.Address.Equal(other.Address) && l.Network == other.Network
}

func (l TxLocator) String() string {
	return fmt.Sprintf("%d:%s@%s", l.Lt, l.Hash.Base64(), l.Network)
}
