package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertRoundTrip(t *testing.T) {
	req := &InsertRequest{Key: -42}
	b, err := req.MarshalWire()
	require.NoError(t, err)

	var got InsertRequest
	require.NoError(t, got.UnmarshalWire(b))
	require.Equal(t, int64(-42), got.Key)

	resp := &InsertResponse{Seq: 7, Size: 3}
	b, err = resp.MarshalWire()
	require.NoError(t, err)

	var gotResp InsertResponse
	require.NoError(t, gotResp.UnmarshalWire(b))
	require.Equal(t, *resp, gotResp)
}

func TestSearchResponseFoundFlag(t *testing.T) {
	for _, found := range []bool{true, false} {
		b, err := (&SearchResponse{Found: found, Color: 1}).MarshalWire()
		require.NoError(t, err)

		var got SearchResponse
		require.NoError(t, got.UnmarshalWire(b))
		require.Equal(t, found, got.Found)
		require.Equal(t, uint32(1), got.Color)
	}
}

func TestSnapshotPackedFields(t *testing.T) {
	resp := &SnapshotResponse{
		Seq:    9,
		Keys:   []int64{-100, 0, 42, 1 << 40},
		Colors: []uint32{1, 0, 0, 1},
	}
	b, err := resp.MarshalWire()
	require.NoError(t, err)

	var got SnapshotResponse
	require.NoError(t, got.UnmarshalWire(b))
	require.Equal(t, *resp, got)
}

func TestEmptySnapshotResponse(t *testing.T) {
	b, err := (&SnapshotResponse{Seq: 1}).MarshalWire()
	require.NoError(t, err)

	var got SnapshotResponse
	require.NoError(t, got.UnmarshalWire(b))
	require.Equal(t, uint64(1), got.Seq)
	require.Empty(t, got.Keys)
	require.Empty(t, got.Colors)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	// Field 9 varint appended after a valid InsertRequest body.
	req := &InsertRequest{Key: 5}
	b, err := req.MarshalWire()
	require.NoError(t, err)
	b = append(b, 0x48, 0x01) // tag(9, varint), value 1

	var got InsertRequest
	require.NoError(t, got.UnmarshalWire(b))
	require.Equal(t, int64(5), got.Key)
}

func TestMalformedRejected(t *testing.T) {
	var got SearchRequest
	require.Error(t, got.UnmarshalWire([]byte{0xff}))
}

func TestCodecDispatch(t *testing.T) {
	c := Codec{}
	require.Equal(t, CodecName, c.Name())

	b, err := c.Marshal(&SearchRequest{Key: 11})
	require.NoError(t, err)

	var got SearchRequest
	require.NoError(t, c.Unmarshal(b, &got))
	require.Equal(t, int64(11), got.Key)

	_, err = c.Marshal("not a message")
	require.Error(t, err)
	require.Error(t, c.Unmarshal(b, "not a message"))
}
