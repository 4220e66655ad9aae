// Package logger wraps zap to give every service the same logging surface:
//   - a global sugared logger writing a console encoding to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, WarnKV, etc.) that take a context.
//
// Services name their context once on entry and pass it down, so every line
// carries the component that produced it. Stdout is left to command output.
package logger
