// Package requestcontext carries per-request values (request id, client
// metadata, device id) from HTTP middleware down to services.
package requestcontext

import "context"

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyClientIP
	keyUserAgent
	keyDeviceID
	keyAdminActor
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID returns the request id, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// WithClientMetadata stores the resolved client IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, clientIP)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

func ClientIP(ctx context.Context) string {
	return stringValue(ctx, keyClientIP)
}

func UserAgent(ctx context.Context) string {
	return stringValue(ctx, keyUserAgent)
}

func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, keyDeviceID, deviceID)
}

func DeviceID(ctx context.Context) string {
	return stringValue(ctx, keyDeviceID)
}

// WithAdminActor records the operator named on an authenticated admin call.
func WithAdminActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, keyAdminActor, actor)
}

// AdminActor is "" outside admin routes or when the operator gave no name.
func AdminActor(ctx context.Context) string {
	return stringValue(ctx, keyAdminActor)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
