// Package logger provides log/slog attribute helpers shared across the
// server runtime packages.
//
// Helpers follow the empty-Attr pattern: passing a nil error or nil UUID
// yields an attribute that slog silently drops, so call sites never need
// nil checks:
//
//	log.Error("bind failed", logger.Error(err), logger.Addr(addr))
//	log.Debug("connection accepted", logger.ConnID(id))
package logger
