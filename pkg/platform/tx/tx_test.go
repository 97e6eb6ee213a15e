package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithTxRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := From(ctx)
	require.False(t, ok)

	fake := new(sql.Tx)
	ctx = WithTx(ctx, fake)
	got, ok := From(ctx)
	require.True(t, ok)
	require.Same(t, fake, got)
}

func TestWithTxNilIsNoop(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	require.False(t, ok)
}

func TestRunJoinsEnclosingTransaction(t *testing.T) {
	fake := new(sql.Tx)
	ctx := WithTx(context.Background(), fake)

	calls := 0
	err := Run(ctx, nil, func(inner context.Context) error {
		calls++
		got, ok := From(inner)
		require.True(t, ok)
		require.Same(t, fake, got)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}
