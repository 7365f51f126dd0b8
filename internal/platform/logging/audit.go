package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// LogAuditEvent records who did what to which resource and whether it
// succeeded. details must not carry secrets or raw error messages; store
// layers pass a categorized label instead.
func LogAuditEvent(
	ctx context.Context,
	action, userID, resourceType, resourceID, result string,
	details map[string]any,
) {
	fields := []zap.Field{
		zap.String("audit.action", action),
		zap.String("audit.user_id", userID),
		zap.String("audit.resource_type", resourceType),
		zap.String("audit.resource_id", resourceID),
		zap.String("audit.result", result),
	}
	if len(details) > 0 {
		fields = append(fields, zap.Any("audit.details", details))
	}
	if result == AuditFailure {
		LoggerFromContext(ctx).Warn("Audit event", fields...)
		return
	}
	LoggerFromContext(ctx).Info("Audit event", fields...)
}
