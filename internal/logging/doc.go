// Package logging assembles the structured slog loggers used across
// NestVision services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and defines the standardized attribute keys (component, record_id,
// message_id, ...) so every subsystem emits log lines with the same shape.
// Prefer these constructors over hand-rolled slog setup.
package logging
