package crypto

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	// derive an address from a name
	address := AddressFromName("alice")
	addressBytes := ShortHash([]byte("alice"))
	// validate string function
	require.Equal(t, address.String(), hex.EncodeToString(addressBytes))
	// validate bytes function
	require.Equal(t, addressBytes, address.Bytes())
	// validate equals function
	require.True(t, address.Equals(NewAddress(addressBytes)))
	require.False(t, address.Equals(nil))
	// validate json marshalling
	marshalled, err := json.Marshal(address)
	require.NoError(t, err)
	require.Equal(t, string(marshalled), "\""+address.String()+"\"")
	// validate unmarshalling
	unmarshalled := new(Address)
	require.NoError(t, json.Unmarshal(marshalled, unmarshalled))
	require.Equal(t, address, unmarshalled)
}

func TestNewAddressFromString(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		input   string
		wantErr bool
	}{
		{
			name:   "plain hex",
			detail: "a 40 character hex string decodes",
			input:  AddressFromName("bob").String(),
		},
		{
			name:   "0x prefix",
			detail: "the 0x prefix is tolerated",
			input:  "0x" + AddressFromName("bob").String(),
		},
		{
			name:    "wrong size",
			detail:  "addresses must be exactly 20 bytes",
			input:   "abcd",
			wantErr: true,
		},
		{
			name:    "not hex",
			detail:  "non hex characters are rejected",
			input:   "zz",
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NewAddressFromString(test.input)
			if test.wantErr {
				require.Error(t, err, test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			require.True(t, got.Equals(AddressFromName("bob")))
		})
	}
}

func TestModuleAddress(t *testing.T) {
	// module addresses are deterministic
	require.True(t, ModuleAddress("xyk", []byte{1}).Equals(ModuleAddress("xyk", []byte{1})))
	// discriminators change the address
	require.False(t, ModuleAddress("xyk", []byte{1}).Equals(ModuleAddress("xyk", []byte{2})))
	// module names change the address
	require.False(t, ModuleAddress("xyk").Equals(ModuleAddress("lbp")))
	// module accounts never collide with named accounts
	require.False(t, ModuleAddress("treasury").Equals(AddressFromName("treasury")))
	require.Len(t, ModuleAddress("treasury").Bytes(), AddressSize)
}
