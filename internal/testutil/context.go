package testutil

import (
	"context"

	"github.com/agencyops/agencyops/internal/types"
)

// SetupContext returns a context carrying what RequestIDMiddleware attaches
// to a live request
func SetupContext() context.Context {
	ctx := types.SetRequestID(context.Background(), types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	return types.SetUserID(ctx, types.SystemUserID)
}
