package fsm

import (
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

/* Key.go contains prefix keys logic for the underlying store*/

var (
	assetPrefix         = []byte{1} // store key prefix for registered assets
	balancePrefix       = []byte{2} // store key prefix for account balances per asset
	accountPrefix       = []byte{3} // store key prefix for account reference counters
	moduleAccountPrefix = []byte{4} // store key prefix for keyless module accounts
	depositPrefix       = []byte{5} // store key prefix for charged insufficient asset deposits
	issuancePrefix      = []byte{6} // store key prefix for the total issuance of each asset
	eventPrefix         = []byte{7} // store key prefix for events by height and index
	eventCountPrefix    = []byte{8} // store key prefix for the number of events per height
	eventIdPrefix       = []byte{9} // store key prefix for the router event id counter of the block
)

/*
- Prefixes are used to allow 'grouping' and organization in a schemaless key-value database environment

- Length prefixed append is used to be able to easily separate the segments of a key

- BigEndianEncoding is used for integers to accommodate the 'lexicographical' sorting nature of the key-value database

- Pools, the oracle and the router keep their own prefixes starting at 16
*/

func AssetPrefix() []byte   { return lib.JoinLenPrefix(assetPrefix) }
func BalancePrefix() []byte { return lib.JoinLenPrefix(balancePrefix) }
func KeyForAsset(id lib.AssetId) []byte {
	return lib.JoinLenPrefix(assetPrefix, id.Bytes())
}
func KeyForBalance(address crypto.AddressI, id lib.AssetId) []byte {
	return lib.JoinLenPrefix(balancePrefix, address.Bytes(), id.Bytes())
}
func BalancesPrefixForAccount(address crypto.AddressI) []byte {
	return lib.JoinLenPrefix(balancePrefix, address.Bytes())
}
func KeyForAccount(address crypto.AddressI) []byte {
	return lib.JoinLenPrefix(accountPrefix, address.Bytes())
}
func KeyForModuleAccount(address crypto.AddressI) []byte {
	return lib.JoinLenPrefix(moduleAccountPrefix, address.Bytes())
}
func KeyForDeposit(address crypto.AddressI, id lib.AssetId) []byte {
	return lib.JoinLenPrefix(depositPrefix, address.Bytes(), id.Bytes())
}
func KeyForIssuance(id lib.AssetId) []byte {
	return lib.JoinLenPrefix(issuancePrefix, id.Bytes())
}
func EventPrefixForHeight(height uint64) []byte {
	return lib.JoinLenPrefix(eventPrefix, lib.Uint64ToBytes(height))
}
func KeyForEvent(height, index uint64) []byte {
	return lib.JoinLenPrefix(eventPrefix, lib.Uint64ToBytes(height), lib.Uint64ToBytes(index))
}
func KeyForEventCount(height uint64) []byte {
	return lib.JoinLenPrefix(eventCountPrefix, lib.Uint64ToBytes(height))
}
func KeyForEventId() []byte { return lib.JoinLenPrefix(eventIdPrefix) }
