package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestNewWithoutAddressDisablesCache(t *testing.T) {
	client, err := New(context.Background(), Options{})
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestNewReportsUnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := New(context.Background(), Options{Addr: addr})
	require.Error(t, err)
}
