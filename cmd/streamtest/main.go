// streamtest connects to a running pricefeed's push channel and prints ticks
// to the console.
// Usage: go run ./cmd/streamtest --url ws://localhost:8080/ws --symbol BTC-USDT
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rickgao/pricefeed/internal/connection"
	"github.com/rickgao/pricefeed/internal/model"
	"github.com/rickgao/pricefeed/internal/version"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "push channel URL")
	source := flag.String("source", "", "only print ticks from this source (binance, coinbase)")
	symbol := flag.String("symbol", "", "only print this pair, e.g. BTC-USDT")
	verbose := flag.Bool("verbose", false, "print full tick JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var filterSource model.Source
	if *source != "" {
		s, err := model.ParseSource(*source)
		if err != nil {
			logger.Error("invalid source", "error", err)
			os.Exit(1)
		}
		filterSource = s
	}
	filterSymbol := strings.ToUpper(*symbol)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := connection.DefaultClientConfig()
	cfg.URL = *url
	cfg.Header = http.Header{"User-Agent": []string{version.UserAgent() + " streamtest"}}

	client := connection.NewClient(cfg, logger)
	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("streaming started - press Ctrl+C to stop", "url", *url)

	var received, printed, bad int
	stats := time.NewTicker(10 * time.Second)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "received", received, "printed", printed)
			return

		case err := <-client.Errors():
			logger.Error("connection lost", "error", err)
			os.Exit(1)

		case <-stats.C:
			logger.Info("stats", "received", received, "printed", printed, "bad_frames", bad)

		case msg := <-client.Messages():
			var tick model.Tick
			if err := json.Unmarshal(msg.Data, &tick); err != nil {
				bad++
				logger.Warn("unexpected frame", "error", err)
				continue
			}
			received++

			if filterSource != "" && tick.Source != filterSource {
				continue
			}
			if filterSymbol != "" && tick.Symbol() != filterSymbol {
				continue
			}
			printed++

			if *verbose {
				fmt.Printf("%s %s\n", msg.ReceivedAt.Format(time.RFC3339Nano), msg.Data)
			} else {
				fmt.Println(tick.String())
			}
		}
	}
}
