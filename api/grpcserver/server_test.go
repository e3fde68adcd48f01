package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"arbor/api/grpcclient"
	"arbor/api/wire"
	"arbor/index"
	"arbor/rbtree"
	"arbor/service"
	"arbor/snapshot"
	"arbor/wal"
)

func startServer(t *testing.T) *grpcclient.Client {
	t.Helper()
	root := t.TempDir()

	w, err := wal.Open(wal.Config{Dir: root + "/wal"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	svc := service.New(index.New(), w, nil, &snapshot.Writer{Dir: root + "/snap"})

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.ForceServerCodec(wire.Codec{}))
	Register(gs, NewServer(svc))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wire.Codec{})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return grpcclient.NewWithConn(conn)
}

func TestInsertSearchSnapshotOverGRPC(t *testing.T) {
	client := startServer(t)
	ctx := context.Background()

	keys := []int64{40, 20, 70, 10, 30, 35, 37}
	for i, k := range keys {
		resp, err := client.Insert(ctx, k)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), resp.Seq)
		require.Equal(t, uint64(i+1), resp.Size)
	}

	found, err := client.Search(ctx, 35)
	require.NoError(t, err)
	require.True(t, found.Found)

	missing, err := client.Search(ctx, 15)
	require.NoError(t, err)
	require.False(t, missing.Found)

	snap, err := client.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(len(keys)), snap.Seq)
	require.Equal(t, []int64{10, 20, 30, 35, 37, 40, 70}, snap.Keys)
	require.Len(t, snap.Colors, len(keys))

	root, err := client.Search(ctx, 40)
	require.NoError(t, err)
	require.True(t, root.Found)
	require.Equal(t, uint32(rbtree.Black), root.Color)
}

func TestSnapshotOnEmptyIndex(t *testing.T) {
	client := startServer(t)

	snap, err := client.Snapshot(context.Background())
	require.NoError(t, err)
	require.Zero(t, snap.Seq)
	require.Empty(t, snap.Keys)
}
