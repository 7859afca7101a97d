package utils

import (
	"context"

	"qtrack/pkg/contextkeys"
	apperrors "qtrack/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUnauthorized
	}
	return userID, nil
}
