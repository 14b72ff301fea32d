package requestid

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header carries the correlation id in both directions.
const Header = "X-Request-ID"

const ginKey = "request_id"

type ctxKey struct{}

// Upstream ids end up in log lines, so only short token-like values are trusted.
var accepted = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// Middleware reuses a well-formed upstream X-Request-ID or mints a UUID, then exposes it
// on the gin context, the request context and the response header.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !accepted.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set(ginKey, id)
		c.Request = c.Request.WithContext(WithID(c.Request.Context(), id))
		c.Header(Header, id)

		c.Next()
	}
}

// WithID stores id on ctx for code below the handler layer.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the id stored by WithID, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Value returns the request id for c.
func Value(c *gin.Context) string {
	if id := c.GetString(ginKey); id != "" {
		return id
	}
	return FromContext(c.Request.Context())
}

// Field is the zap field used by access and panic logs. It is a no-op when no id is set.
func Field(c *gin.Context) zap.Field {
	return field(Value(c))
}

// ContextField is Field for service code that only holds the request context.
func ContextField(ctx context.Context) zap.Field {
	return field(FromContext(ctx))
}

func field(id string) zap.Field {
	if id == "" {
		return zap.Skip()
	}
	return zap.String(ginKey, id)
}
