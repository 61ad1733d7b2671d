package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/pkg/domain"
)

func TestGatewayRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	g, err := Open(ctx, Options{Addr: mr.Addr(), KeyPrefix: "hotel"})
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	_, ok, err := g.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	snap := domain.Snapshot{
		Rooms:      []domain.Room{{Base: domain.Base{ID: "201"}, Name: "Corner", Status: domain.StatusVacant}},
		StockItems: []domain.StockItem{{Base: domain.Base{ID: "soap"}, Name: "Soap", Quantity: 12}},
		Sequences:  domain.Sequences{Movements: 7},
	}
	require.NoError(t, g.Save(ctx, snap))

	assert.True(t, mr.Exists("hotel:state:rooms"))
	assert.True(t, mr.Exists("hotel:state:stock_movements"))
	raw, err := mr.Get("hotel:state:movements")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	got, ok, err := g.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Rooms, 1)
	assert.Equal(t, "Corner", got.Rooms[0].Name)
	require.Len(t, got.StockItems, 1)
	assert.Equal(t, 12.0, got.StockItems[0].Quantity)
	assert.Equal(t, int64(7), got.Sequences.Movements)
}

func TestGatewayDefaultPrefixAndCorruptBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	g := New(client, "")
	defer func() { _ = g.Close() }()

	require.NoError(t, mr.Set("frontdesk:state:rooms", "{"))
	_, _, err := g.Load(context.Background())
	require.Error(t, err)
}

func TestOpenFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := Open(context.Background(), Options{Addr: addr})
	require.Error(t, err)
}
