package fence

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityBinaryRoundTrip(t *testing.T) {
	ids := []Identity{
		lobby(),
		NewIdentity("", uuid.Nil, 0, 0),
		NewIdentity("Max", uuid.New(), 0xFFFF, 0xFFFF),
		NewIdentity("Grüße 🛰", uuid.New(), 1, 65534),
	}

	for _, id := range ids {
		data, err := id.MarshalBinary()
		require.NoError(t, err)

		got, err := UnmarshalIdentity(data)
		require.NoError(t, err)
		assert.True(t, got.Equal(id), "round trip of %v gave %v", id, got)
	}
}

func TestUnmarshalIdentityCorrupt(t *testing.T) {
	region := lobbyRegion[:]

	tests := []struct {
		name      string
		data      []byte
		wantField string
	}{
		{"Empty", nil, ""},
		{"Garbage", []byte{0xff, 0x00, 0x13}, ""},
		{"NotAMap", mustCBOR(t, "hello"), ""},
		{"MissingName", mustCBOR(t, map[int]any{2: region, 3: 1, 4: 1}), "name"},
		{"ShortRegion", mustCBOR(t, map[int]any{1: "x", 2: []byte{1, 2, 3}, 3: 1, 4: 1}), "region_id"},
		{"MissingMajor", mustCBOR(t, map[int]any{1: "x", 2: region, 4: 1}), "major"},
		{"MissingMinor", mustCBOR(t, map[int]any{1: "x", 2: region, 3: 1}), "minor"},
		{"MajorOverflow", mustCBOR(t, map[int]any{1: "x", 2: region, 3: 70000, 4: 1}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalIdentity(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptData)

			var cde *CorruptDataError
			require.ErrorAs(t, err, &cde)
			assert.Equal(t, tt.wantField, cde.Field)
		})
	}
}

func TestUnmarshalIdentityLenient(t *testing.T) {
	t.Run("ValidPayloadUnchanged", func(t *testing.T) {
		data, err := lobby().MarshalBinary()
		require.NoError(t, err)
		assert.True(t, UnmarshalIdentityLenient(data).Equal(lobby()))
	})

	t.Run("GarbageFallsBackToDefaults", func(t *testing.T) {
		id := UnmarshalIdentityLenient([]byte{0xff})
		assert.Equal(t, "", id.Name())
		assert.NotEqual(t, uuid.Nil, id.RegionID())
		assert.Equal(t, uint16(0), id.Major())
		assert.Equal(t, uint16(0), id.Minor())
	})

	t.Run("RecoversGoodFields", func(t *testing.T) {
		data := mustCBOR(t, map[int]any{1: "Lobby", 2: lobbyRegion[:], 3: 70000, 4: 201})
		id := UnmarshalIdentityLenient(data)
		assert.Equal(t, "Lobby", id.Name())
		assert.Equal(t, lobbyRegion, id.RegionID())
		assert.Equal(t, uint16(0), id.Major())
		assert.Equal(t, uint16(201), id.Minor())
	})

	t.Run("FreshRegionWhenMissing", func(t *testing.T) {
		data := mustCBOR(t, map[int]any{1: "Lobby", 3: 501, 4: 201})
		a := UnmarshalIdentityLenient(data)
		b := UnmarshalIdentityLenient(data)
		assert.NotEqual(t, a.RegionID(), b.RegionID())
		assert.Equal(t, uint16(501), a.Major())
	})
}

func mustCBOR(t *testing.T, v any) []byte {
	t.Helper()
	data, err := cbor.Marshal(v)
	require.NoError(t, err)
	return data
}
