package main

import (
    "bufio"
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "os"
    "sync"
    "time"

    "silverspot/internal/app"
    "silverspot/internal/config"
    "silverspot/internal/provider"
)

// probe calls every enabled provider once, in parallel and without the
// resolver cache, and reports what each one returned.

type report struct {
    Provider   string  `json:"provider"`
    Configured bool    `json:"configured"`
    Silver     float64 `json:"silver,omitempty"`
    Gold       float64 `json:"gold,omitempty"`
    FetchedAt  string  `json:"fetchedAt,omitempty"`
    Kind       string  `json:"kind,omitempty"`
    Error      string  `json:"error,omitempty"`
    TookMS     int64   `json:"tookMs"`
}

func main() {
    var (
        cfgPath    string
        outPath    string
        timeoutSec int
    )
    flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
    flag.StringVar(&outPath, "out", "", "also write the reports as JSON to this file")
    flag.IntVar(&timeoutSec, "timeout", 0, "per-provider timeout seconds (0 = config)")
    flag.Parse()

    cfg, err := config.Load(cfgPath)
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        os.Exit(1)
    }
    if timeoutSec > 0 { cfg.Resolver.ProviderTimeoutSec = timeoutSec }
    log := app.NewLogger(cfg.Server, os.Stderr)

    timeout := time.Duration(cfg.Resolver.ProviderTimeoutSec) * time.Second
    reports := probe(context.Background(), app.Providers(cfg, log), timeout)
    writeTable(os.Stdout, reports)

    if outPath != "" {
        if err := writeJSON(outPath, reports); err != nil {
            fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
            os.Exit(1)
        }
        log.Info("done", "out", outPath)
    }
}

// probe returns one report per provider, in the providers' order.
func probe(ctx context.Context, providers []provider.Provider, timeout time.Duration) []report {
    out := make([]report, len(providers))
    wg := sync.WaitGroup{}
    for i, p := range providers {
        out[i] = report{Provider: p.Name(), Configured: p.Configured()}
        if !out[i].Configured { continue }
        wg.Add(1)
        go func() {
            defer wg.Done()
            cctx, cancel := context.WithTimeout(ctx, timeout)
            defer cancel()
            start := time.Now()
            pair, err := p.Fetch(cctx)
            out[i].TookMS = time.Since(start).Milliseconds()
            if err != nil {
                out[i].Kind = string(provider.KindOf(err))
                out[i].Error = err.Error()
                return
            }
            out[i].Silver, out[i].Gold = pair.Silver, pair.Gold
            out[i].FetchedAt = pair.FetchedAt.Format(time.RFC3339)
        }()
    }
    wg.Wait()
    return out
}

func writeTable(w io.Writer, reports []report) {
    for _, r := range reports {
        switch {
        case !r.Configured:
            fmt.Fprintf(w, "%-12s skipped (not configured)\n", r.Provider)
        case r.Error != "":
            fmt.Fprintf(w, "%-12s %-13s %5dms  %s\n", r.Provider, r.Kind, r.TookMS, r.Error)
        default:
            fmt.Fprintf(w, "%-12s silver=%-10.4f gold=%-10.2f %5dms  at %s\n", r.Provider, r.Silver, r.Gold, r.TookMS, r.FetchedAt)
        }
    }
}

func writeJSON(path string, reports []report) error {
    f, err := os.Create(path)
    if err != nil { return err }
    bw := bufio.NewWriter(f)
    enc := json.NewEncoder(bw)
    enc.SetIndent("", "  ")
    if err := enc.Encode(reports); err != nil {
        f.Close()
        return err
    }
    if err := bw.Flush(); err != nil {
        f.Close()
        return err
    }
    return f.Close()
}
