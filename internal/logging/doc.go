// Package logging provides structured logging for pestid.
//
// # Overview
//
// The package wraps Zap with:
//   - A Trace level (-2, below Debug)
//   - Dual output (stdout and the OpenTelemetry log bridge)
//   - Context field injection (trace_id, request.id, location.country)
//   - Redaction of secrets and raw image payloads
//   - Level-aware sampling (errors are never sampled)
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req-42")
//	ctx = logging.WithCountry(ctx, "Kenya")
//	logger.Info(ctx, "identification completed", zap.String("pest", "Aphids"))
//
// Output:
//
//	{
//	  "ts": "2026-03-15T10:15:30.000Z",
//	  "level": "info",
//	  "msg": "identification completed",
//	  "service": "pestid",
//	  "request.id": "req-42",
//	  "location.country": "Kenya",
//	  "pest": "Aphids"
//	}
//
// Packages that only need a plain *zap.Logger receive Logger.Underlying().
package logging
