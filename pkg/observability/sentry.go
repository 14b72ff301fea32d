package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/noah-isme/campus-registrar-api/pkg/config"
)

// InitSentry configures the Sentry client. An empty DSN disables reporting.
func InitSentry(cfg config.SentryConfig, env string) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: env,
		Release:     cfg.Release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr reports err to Sentry when a client is configured.
func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// CapturePanic reports a recovered panic value.
func CapturePanic(v interface{}) {
	if v != nil {
		sentry.CurrentHub().Recover(v)
	}
}
