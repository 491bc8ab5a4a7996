// Package logger wraps zap and offers:
//   - a global sugared logger writing console-formatted lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing for the --log-level flag and LOG_LEVEL variable,
//   - convenience functions (Infof, ErrorKV, etc.) that take a context.
//
// Services receive a context and log through it, so the logger name set by
// the entry point follows every message.
package logger
