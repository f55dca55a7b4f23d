// Package services defines shared utilities consumed by the scheduler and the
// external client integrations.
//
// Key responsibilities:
//   - Context helpers that stamp schedule IDs, component names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (transient vs configuration vs not-found) for retry decisions.
//
// Use these helpers when wiring new scheduler or client logic so operational
// behaviour stays uniform across the pipeline.
package services
