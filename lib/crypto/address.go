package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// AddressI is an account identifier on the ledger
type AddressI interface {
	MarshalJSON() ([]byte, error)
	UnmarshalJSON([]byte) error
	Bytes() []byte
	String() string
	Equals(AddressI) bool
}

type Address []byte

var _ AddressI = &Address{}

const (
	AddressSize = 20
)

// module account derivation domain
const moduleAccountDomain = "modl/"

func (a *Address) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }
func (a *Address) Bytes() []byte                { return (*a)[:] }
func (a *Address) String() string               { return hex.EncodeToString(a.Bytes()) }
func (a *Address) Equals(e AddressI) bool {
	if e == nil {
		return false
	}
	return bytes.Equal(a.Bytes(), e.Bytes())
}

func (a *Address) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	addr, err := NewAddressFromString(s)
	if err != nil {
		return err
	}
	*a = *addr.(*Address)
	return nil
}

// NewAddress() wraps bytes as an address
func NewAddress(b []byte) AddressI {
	a := Address(bytes.Clone(b))
	return &a
}

// NewAddressFromString() decodes a hex encoded 20 byte address
func NewAddressFromString(s string) (AddressI, error) {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if len(bz) != AddressSize {
		return nil, errors.New("address must be 20 bytes")
	}
	return NewAddress(bz), nil
}

// AddressFromName() derives a deterministic address from a human readable account name
// Used for genesis and test accounts
func AddressFromName(name string) AddressI { return NewAddress(ShortHash([]byte(name))) }

// ModuleAddress() derives the keyless account of a runtime module (treasury, pools)
// from the module name and optional discriminators
func ModuleAddress(name string, parts ...[]byte) AddressI {
	msg := []byte(moduleAccountDomain + name)
	for _, p := range parts {
		msg = append(append(msg, '/'), p...)
	}
	return NewAddress(ShortHash(msg))
}
