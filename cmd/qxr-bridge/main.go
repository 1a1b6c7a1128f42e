package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/qxrlabs/qxr-bridge/bridge"
	"github.com/qxrlabs/qxr-bridge/memory"
	"github.com/qxrlabs/qxr-bridge/resource"
)

func main() {
	var (
		strategy      = flag.String("strategy", "", "Strategy name")
		timeframe     = flag.String("timeframe", "", "Timeframe label (defaults to 24h in content)")
		signals       = flag.Int("signals", 0, "Signal count")
		opportunities = flag.Int("opportunities", 0, "Opportunity count")
		strength      = flag.Float64("strength", 0, "Signal strength")
		priceMin      = flag.Float64("price-min", 0, "Lower price bound")
		priceMax      = flag.Float64("price-max", 0, "Upper price bound")
		liquidity     = flag.Int64("liquidity", 0, "Maximum liquidity")
		platform      = flag.String("platform", "", "Generate content for platform (linkedin, twitter, ...)")
		batchFile     = flag.String("batch", "", "Score a JSON array of records from file")
		useWazero     = flag.Bool("wazero", false, "Back the arena with wazero linear memory")
		metricsAddr   = flag.String("metrics", "", "Serve Prometheus metrics on this address")
		showStats     = flag.Bool("stats", false, "Print memory accounting after the run")
		interactive   = flag.Bool("i", false, "Interactive mode with TUI")
		verbose       = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	log := zap.NewNop()
	if *verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	if *interactive {
		if err := runInteractive(log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *strategy == "" && *batchFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: qxr-bridge -strategy <name> [-signals n] [-strength x] [-platform linkedin]")
		fmt.Fprintln(os.Stderr, "       qxr-bridge -batch <records.json>")
		fmt.Fprintln(os.Stderr, "       qxr-bridge -i  (interactive mode)")
		os.Exit(1)
	}

	cfg := runConfig{
		fields: map[string]any{
			"signals":         *signals,
			"opportunities":   *opportunities,
			"signal_strength": *strength,
			"price_min":       *priceMin,
			"price_max":       *priceMax,
			"max_liquidity":   *liquidity,
			"strategy":        *strategy,
			"timeframe":       *timeframe,
		},
		platform:    *platform,
		batchFile:   *batchFile,
		useWazero:   *useWazero,
		metricsAddr: *metricsAddr,
		showStats:   *showStats,
	}
	if err := run(cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runConfig struct {
	fields      map[string]any
	platform    string
	batchFile   string
	metricsAddr string
	useWazero   bool
	showStats   bool
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	scoreStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#90EE90"))
)

// styled renders s with style only when stdout is a terminal.
func styled(style lipgloss.Style, s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return style.Render(s)
}

func run(cfg runConfig, log *zap.Logger) error {
	ctx := context.Background()

	acct := memory.NewAccounting()
	arenaCfg := memory.Config{Accounting: acct}
	if cfg.useWazero {
		store, err := memory.NewWazeroStore(ctx, memory.WazeroConfig{})
		if err != nil {
			return fmt.Errorf("wazero store: %w", err)
		}
		defer store.Close(ctx)
		arenaCfg.Store = store
		log.Info("arena backed by wazero linear memory")
	}
	arena := memory.NewArena(arenaCfg)
	host := bridge.NewHost(bridge.Config{Arena: arena, Logger: log})
	defer host.Close()

	if cfg.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := reg.Register(memory.NewStatsCollector(acct)); err != nil {
			return fmt.Errorf("register collector: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.metricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		fmt.Printf("Metrics: http://%s/metrics\n", cfg.metricsAddr)
	}

	fmt.Printf("Engine: %s\n", host.Version())

	if cfg.batchFile != "" {
		if err := runBatch(ctx, host, cfg.batchFile); err != nil {
			return err
		}
	} else {
		if err := runSingle(ctx, host, cfg.fields, cfg.platform); err != nil {
			return err
		}
	}

	if cfg.showStats {
		printStats(host)
	}
	return nil
}

func runSingle(ctx context.Context, host *bridge.Host, fields map[string]any, platform string) error {
	handle, err := host.NewRecord(fields)
	if err != nil {
		return fmt.Errorf("build record: %w", err)
	}
	defer host.DropRecord(handle)

	score, err := host.Process(ctx, handle)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	fmt.Printf("%s %s\n", styled(labelStyle, "Score:"), styled(scoreStyle, fmt.Sprintf("%.4f", score)))

	if platform != "" {
		content, err := host.GenerateContent(ctx, handle, platform)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		fmt.Printf("\n--- %s ---\n%s\n", platform, content)
	}
	return nil
}

func runBatch(ctx context.Context, host *bridge.Host, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var entries []map[string]any
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("decode batch file: %w", err)
	}

	handles := make([]resource.Handle, 0, len(entries))
	names := make([]string, 0, len(entries))
	for i, entry := range entries {
		handle, err := host.NewRecord(normalizeFields(entry))
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		handles = append(handles, handle)
		names = append(names, recordName(entry, i))
	}
	defer func() {
		for _, h := range handles {
			host.DropRecord(h)
		}
	}()

	scores, err := host.BatchProcess(ctx, handles)
	if err != nil {
		return fmt.Errorf("batch process: %w", err)
	}

	fmt.Printf("Scored %d records:\n", len(scores))
	for i, s := range scores {
		fmt.Printf("  %s %s\n",
			styled(labelStyle, fmt.Sprintf("%-32s", names[i])),
			styled(scoreStyle, fmt.Sprintf("%.4f", s)))
	}
	return nil
}

// normalizeFields converts json.Number values into the concrete types
// the record constructor expects.
func normalizeFields(entry map[string]any) map[string]any {
	fields := make(map[string]any, len(entry))
	for key, value := range entry {
		num, ok := value.(json.Number)
		if !ok {
			fields[key] = value
			continue
		}
		if strings.ContainsAny(num.String(), ".eE") {
			if f, err := num.Float64(); err == nil {
				fields[key] = f
				continue
			}
		}
		if n, err := num.Int64(); err == nil {
			fields[key] = n
			continue
		}
		if f, err := num.Float64(); err == nil {
			fields[key] = f
		}
	}
	return fields
}

func recordName(entry map[string]any, index int) string {
	if s, ok := entry["strategy"].(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("record %d", index)
}

func printStats(host *bridge.Host) {
	stats := host.MemoryStats()
	fmt.Printf("\nMemory accounting:\n")
	fmt.Printf("  total allocated:    %d bytes\n", stats["total_allocated"])
	fmt.Printf("  peak allocated:     %d bytes\n", stats["peak_allocated"])
	fmt.Printf("  allocations:        %d\n", stats["allocation_count"])
	fmt.Printf("  deallocations:      %d\n", stats["deallocation_count"])
}
