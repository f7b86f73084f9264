package logfields

import "log/slog"

// Canonical log field names shared by every package.
const (
	KeyComponent  = "component"
	KeyPath       = "path"
	KeySlug       = "slug"
	KeyPosts      = "posts"
	KeyWarnings   = "warnings"
	KeyRoute      = "route"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyError      = "error"
)

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Posts(n int) slog.Attr           { return slog.Int(KeyPosts, n) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Or returns l, or the default logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
