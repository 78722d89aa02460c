package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndString(t *testing.T) {
	msg := []byte("omniroute")
	expected := sha256.Sum256(msg)
	// hash the data directly
	hash := Hash(msg)
	require.Equal(t, expected[:], hash)
	// ensure size is correct
	require.Len(t, hash, HashSize)
	// short hash is a prefix of the hash
	require.Equal(t, hash[:AddressSize], ShortHash(msg))
	// validate string
	require.Equal(t, hex.EncodeToString(hash), HashString(msg))
}
