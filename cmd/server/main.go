package main

import (
    "compress/gzip"
    "context"
    "errors"
    "io"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "sync"
    "syscall"
    "time"

    "silverspot/internal/app"
    "silverspot/internal/config"
    "silverspot/internal/metrics"
)

func main() {
    // Config
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        slog.Error("config", "error", err)
        os.Exit(1)
    }
    log := app.NewLogger(cfg.Server, os.Stderr)
    slog.SetDefault(log)

    m := metrics.New()
    res := app.NewResolver(cfg, app.Providers(cfg, log), m, log)

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           newMux(res, m, log),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec+cfg.Resolver.ProviderTimeoutSec*2) * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Info("server listening", "addr", srv.Addr, "cache_ttl", res.TTL())
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Error("server", "error", err)
            os.Exit(1)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    log.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Warn("shutdown", "error", err)
    }
}

func newMux(res resolver, m *metrics.Metrics, log *slog.Logger) http.Handler {
    api := http.NewServeMux()
    api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte(`{"status":"ok"}`))
    })
    metals := metalsHandler(res, log)
    api.Handle("/api/metals", metals)
    api.Handle("/api/metals.json", metals)

    root := http.NewServeMux()
    root.Handle("/metrics", m.Handler())
    root.Handle("/", withJSONHeaders(withGzip(recoverPanic(api, log))))
    return root
}

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        // Basic CORS for browser usage.
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
        w.Header().Set("Access-Control-Expose-Headers", "X-Cache")
        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusNoContent)
            return
        }
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
        next.ServeHTTP(gw, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler, log *slog.Logger) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                log.Error("handler panic", "path", r.URL.Path, "panic", rec)
                http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}
