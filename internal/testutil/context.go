package testutil

import (
	"context"

	"github.com/flexprice/orderbilling/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.WithRunID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RUN))
	return ctx
}
