// Package logger wraps zap for the alarm node:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - leveled helpers (Infof, WarnKV, ...) and diagnostic events.
//
// Components receive a context and take the logger from it, so every line
// carries the name of the component that wrote it.
package logger
