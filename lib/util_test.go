package lib

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLengthPrefixedKeys(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		segments [][]byte
		expected [][]byte
	}{
		{
			name:     "route key",
			detail:   "prefix followed by an ordered asset pair",
			segments: [][]byte{[]byte("r/"), Uint32ToBytes(2), Uint32ToBytes(4)},
			expected: [][]byte{[]byte("r/"), Uint32ToBytes(2), Uint32ToBytes(4)},
		},
		{
			name:     "nil segment",
			detail:   "nil segments are skipped",
			segments: [][]byte{[]byte("b/"), nil, Uint64ToBytes(9)},
			expected: [][]byte{[]byte("b/"), Uint64ToBytes(9)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, DecodeLengthPrefixed(JoinLenPrefix(test.segments...)), test.detail)
		})
	}
	// a truncated key yields the complete segments only
	key := JoinLenPrefix([]byte("e/"), Uint64ToBytes(3))
	require.Equal(t, [][]byte{[]byte("e/")}, DecodeLengthPrefixed(key[:len(key)-1]))
}

func TestIntegerKeysSortNumerically(t *testing.T) {
	require.Equal(t, -1, bytes.Compare(Uint64ToBytes(255), Uint64ToBytes(256)))
	require.Equal(t, -1, bytes.Compare(Uint32ToBytes(1), Uint32ToBytes(1<<24)))
	require.EqualValues(t, 1<<40, BytesToUint64(Uint64ToBytes(1<<40)))
	require.EqualValues(t, 7, BytesToUint32(Uint32ToBytes(7)))
	require.Zero(t, BytesToUint64([]byte{1}))
}

func TestJSONFile(t *testing.T) {
	dir := t.TempDir()
	require.False(t, FileExists(dir, "route.json"))
	expected := Route{{Pool: OmnipoolPool, AssetIn: 2, AssetOut: 0}, {Pool: XYKPool, AssetIn: 0, AssetOut: 4}}
	require.NoError(t, SaveJSONToFile(expected, dir, "route.json"))
	require.True(t, FileExists(dir, "route.json"))
	var got Route
	require.NoError(t, NewJSONFromFile(&got, dir, "route.json"))
	require.Equal(t, expected, got)
	require.Error(t, NewJSONFromFile(&got, dir, "missing.json"))
}
