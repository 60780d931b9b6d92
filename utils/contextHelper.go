package utils

import (
	"context"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/appctx"
)

var (
	ContextKeyEntityId      = appctx.ContextKeyEntityId
	ContextKeyUserName      = appctx.ContextKeyUserName
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetEntityIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyEntityId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetEntityIdInContext(ctx context.Context, entityId string) context.Context {
	return appctx.Set(ctx, ContextKeyEntityId, entityId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
