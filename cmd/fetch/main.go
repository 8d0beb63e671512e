package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "os"
    "strings"
    "time"

    "silverspot/internal/app"
    "silverspot/internal/config"
    "silverspot/internal/spot"
)

func main() {
    var configPath string
    var force bool
    var repeat int
    var timeout int
    var logLevel string

    flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json or config.yaml (optional)")
    flag.BoolVar(&force, "force", getenvBool("FORCE", false), "bypass the fresh cache")
    flag.IntVar(&repeat, "repeat", getenvInt("REPEAT", 1), "resolve N times in a row to show cache behaviour")
    flag.IntVar(&timeout, "timeout", getenvInt("PROVIDER_TIMEOUT_SEC", 0), "per-provider timeout seconds (0 = config)")
    flag.StringVar(&logLevel, "log-level", getenv("LOG_LEVEL", ""), "debug|info|warn|error")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        os.Exit(1)
    }
    if timeout > 0 { cfg.Resolver.ProviderTimeoutSec = timeout }
    if logLevel != "" { cfg.Server.LogLevel = logLevel }
    if repeat < 1 { repeat = 1 }

    log := app.NewLogger(cfg.Server, os.Stderr)
    res := app.NewResolver(cfg, app.Providers(cfg, log), nil, log)

    if err := run(context.Background(), res, os.Stdout, force, repeat); err != nil {
        fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
        os.Exit(1)
    }
}

type resolver interface {
    Resolve(ctx context.Context, force bool) spot.Result
}

// run resolves repeat times, forcing only the first resolution, and prints
// each result with its cache status.
func run(ctx context.Context, res resolver, w io.Writer, force bool, repeat int) error {
    for i := 0; i < repeat; i++ {
        start := time.Now()
        out := res.Resolve(ctx, force && i == 0)
        b, err := json.MarshalIndent(out, "", "  ")
        if err != nil { return err }
        if _, err := fmt.Fprintf(w, "X-Cache: %s (%s)\n%s\n", out.Status, time.Since(start).Round(time.Millisecond), b); err != nil {
            return err
        }
    }
    return nil
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var x int
        _, _ = fmt.Sscanf(v, "%d", &x)
        if x != 0 { return x }
    }
    return def
}
func getenvBool(key string, def bool) bool {
    if v := os.Getenv(key); v != "" {
        switch strings.ToLower(v) {
        case "1","true","yes","y": return true
        case "0","false","no","n": return false
        }
    }
    return def
}
