package main

import (
    "context"
    "encoding/json"
    "log/slog"
    "net/http"

    "silverspot/internal/spot"
)

const allowedMethods = "GET, HEAD, OPTIONS"

type resolver interface {
    Resolve(ctx context.Context, force bool) spot.Result
}

// metalsHandler serves the current spot pair. It always answers 200; the
// X-Cache header tells HIT, STALE and MISS apart. Any "force" query
// parameter, whatever its value, bypasses the fresh cache.
func metalsHandler(res resolver, log *slog.Logger) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.Method {
        case http.MethodGet, http.MethodHead:
        default:
            w.Header().Set("Allow", allowedMethods)
            http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
            return
        }
        force := r.URL.Query().Has("force")
        out := res.Resolve(r.Context(), force)
        log.Debug("metals request", "force", force, "cache", out.Status, "source", out.Source)

        w.Header().Set("X-Cache", string(out.Status))
        w.Header().Set("Cache-Control", "no-store")
        w.WriteHeader(http.StatusOK)
        if r.Method == http.MethodHead {
            return
        }
        enc := json.NewEncoder(w)
        enc.SetEscapeHTML(false)
        if err := enc.Encode(out); err != nil {
            log.Warn("write metals response", "error", err)
        }
    })
}
