package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data/collector"
)

var (
	fetchWorkers int
	fetchSaveDB  bool
	fetchCSV     string
	fetchIncr    bool
)

// fetchCmd downloads the universe from Yahoo Finance
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Yahoo Finance 가격 수집",
	Long: `유니버스 전체 종목의 수정종가를 Yahoo Finance에서 수집합니다.
수집 기간은 strategy 설정의 ranges.full 입니다.

결과:
  - CSV (기본: $DATA_DIR/prices.csv 또는 --prices)
  - --save-db: data.daily_prices 테이블에 upsert
  - --incremental: DB에 저장된 마지막 날짜 다음날부터만 수집 (--save-db 포함)

Example:
  go run ./cmd/quant fetch
  go run ./cmd/quant fetch --workers 4 --save-db
  go run ./cmd/quant fetch --incremental
  go run ./cmd/quant fetch --csv data/prices.csv`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", collector.DefaultConfig().Workers, "concurrent downloads")
	fetchCmd.Flags().BoolVar(&fetchSaveDB, "save-db", false, "also upsert prices into PostgreSQL")
	fetchCmd.Flags().StringVar(&fetchCSV, "csv", "", "output CSV (default: --prices)")
	fetchCmd.Flags().BoolVar(&fetchIncr, "incremental", false, "resume each ticker after its latest stored date (implies --save-db)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	from, to, err := rt.strategy.Ranges.Full.Bounds()
	if err != nil {
		return err
	}
	tickers := rt.strategy.Universe.Tickers

	client, err := rt.yahooClient()
	if err != nil {
		return err
	}

	store := s0_data.NewMemoryStore()
	sinks := []s0_data.PriceSink{store}
	cfg := collector.Config{Workers: fetchWorkers}
	// CSV는 수집분만이 아니라 전체 기간이 필요하므로 증분 모드에서는 DB에서 다시 읽는다
	var output contracts.PriceSource = store
	if fetchSaveDB || fetchIncr {
		db, err := rt.database(ctx)
		if err != nil {
			return err
		}
		repo := s0_data.NewPriceRepository(db.Pool)
		sinks = append(sinks, repo)
		if fetchIncr {
			cfg.Resume = repo
			output = repo
		}
	}

	PrintDoubleSeparator()
	fmt.Printf("  Fetch %d tickers  %s ~ %s\n", len(tickers), from.Format("2006-01-02"), to.Format("2006-01-02"))
	PrintSeparator()

	results, fetchErr := collector.NewCollector(client, rt.log, sinks...).
		FetchAll(ctx, tickers, from, to, cfg)
	for i, r := range results {
		switch {
		case r.Error != nil:
			PrintProgress("Fetch", fmt.Sprintf("%s failed: %v", r.Ticker, r.Error), i+1, len(results))
		case r.UpToDate:
			PrintProgress("Fetch", fmt.Sprintf("%s: up to date", r.Ticker), i+1, len(results))
		default:
			PrintProgress("Fetch", fmt.Sprintf("%s: %d prices from %s", r.Ticker, r.PriceCount, r.From.Format("2006-01-02")), i+1, len(results))
		}
	}
	if fetchErr != nil {
		return fmt.Errorf("fetch: %w", fetchErr)
	}

	frame, err := s0_data.NewLoader(output, rt.log).Load(ctx, tickers, from, to)
	if err != nil {
		return err
	}

	path := fetchCSV
	if path == "" {
		path = rt.pricesFile()
	}
	if err := s0_data.WriteCSVFile(path, frame); err != nil {
		return err
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Wrote %d rows × %d tickers to %s in %.2fs",
		frame.NRows(), frame.NCols(), path, time.Since(start).Seconds()))
	return nil
}
