package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data/quality"
)

var (
	dataCheckSave        bool
	dataCheckMinCoverage float64
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "가격 데이터 품질 확인",
	Long: `가격 테이블의 티커별 커버리지와 품질 점수를 확인합니다.

확인 항목:
- 티커별 첫 관측일
- 티커별 커버리지 (첫 관측일 이후 결측 비율)
- 품질 점수 및 통과 여부

Example:
  go run ./cmd/quant data-check
  go run ./cmd/quant data-check --source db --save`,
	RunE: runDataCheck,
}

func init() {
	rootCmd.AddCommand(dataCheckCmd)
	dataCheckCmd.Flags().BoolVar(&dataCheckSave, "save", false, "store the snapshot in PostgreSQL")
	dataCheckCmd.Flags().Float64Var(&dataCheckMinCoverage, "min-coverage", quality.DefaultConfig().MinCoverage, "per-ticker coverage threshold")
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	prices, err := rt.loadPrices(ctx)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	cfg := quality.DefaultConfig()
	cfg.MinCoverage = dataCheckMinCoverage
	snapshot, err := quality.NewQualityGate(cfg).Check(prices)
	if err != nil {
		return err
	}

	fmt.Println("📊 가격 데이터 상태 확인")
	PrintDoubleSeparator()
	fmt.Printf("  Range   : %s ~ %s (%d rows)\n",
		snapshot.From.Format("2006-01-02"), snapshot.To.Format("2006-01-02"), prices.NRows())
	PrintSeparator()

	tickers := make([]string, 0, len(snapshot.Coverage))
	for t := range snapshot.Coverage {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	widths := []int{8, 12, 10}
	PrintTableHeader([]string{"Ticker", "First", "Coverage"}, widths)
	for _, t := range tickers {
		first := snapshot.FirstObserved[t]
		if first == "" {
			first = "-"
		}
		PrintTableRow([]string{t, first, fmt.Sprintf("%.2f%%", snapshot.Coverage[t]*100)}, widths)
	}

	fmt.Println()
	PrintKeyValue("Valid", fmt.Sprintf("%d / %d", snapshot.ValidTickers, snapshot.TotalTickers), 7)
	PrintKeyValue("Empty", fmt.Sprintf("%d rows", snapshot.EmptyRows), 7)
	PrintKeyValue("Score", fmt.Sprintf("%.4f", snapshot.QualityScore), 7)
	if snapshot.Passed {
		PrintSuccess("Quality gate passed")
	} else {
		PrintWarning("Quality gate failed")
	}

	if dataCheckSave {
		db, err := rt.database(ctx)
		if err != nil {
			return err
		}
		if err := quality.NewRepository(db.Pool).SaveSnapshot(ctx, snapshot); err != nil {
			return err
		}
		PrintSuccess("Snapshot saved")
	}
	return nil
}
