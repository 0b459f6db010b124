package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/audit"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/backtest"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/portfolio"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
)

var (
	weightsTail   int
	weightsExport string
	weightsSave   bool
)

// weightsCmd computes the weights table of one preset
var weightsCmd = &cobra.Command{
	Use:   "weights <preset>",
	Short: "Preset 비중 테이블 계산",
	Long: `Preset 하나의 비중 테이블을 계산하고 마지막 N행을 출력합니다.

Options:
  --tail    출력할 마지막 행 수
  --export  비중/수익률 CSV 저장 디렉토리 (<preset>_weights.csv, <preset>_returns.csv)
  --save    DB에 비중, 실행 스냅샷, 성과 리포트 저장

Example:
  go run ./cmd/quant weights momentum
  go run ./cmd/quant weights mv_gamma100 --tail 10
  go run ./cmd/quant weights momentum --export data/out --save`,
	Args: cobra.ExactArgs(1),
	RunE: runWeights,
}

func init() {
	rootCmd.AddCommand(weightsCmd)
	weightsCmd.Flags().IntVar(&weightsTail, "tail", 5, "number of trailing rows to print")
	weightsCmd.Flags().StringVar(&weightsExport, "export", "", "directory to write weights/returns CSV")
	weightsCmd.Flags().BoolVar(&weightsSave, "save", false, "persist weights and report to PostgreSQL")
}

func runWeights(cmd *cobra.Command, args []string) error {
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

	engine := backtest.NewEngine(rt.strategy, audit.NewAnalyzer(rt.log), rt.log)
	result, err := backtest.NewRunner(engine, rt.strategy, prices).RunPreset(ctx, args[0])
	if err != nil {
		return err
	}

	printWeightsTail(result, weightsTail)

	if weightsExport != "" {
		wpath := audit.ReferencePath(weightsExport, result.Preset, "weights")
		rpath := audit.ReferencePath(weightsExport, result.Preset, "returns")
		if err := s0_data.WriteCSVFile(wpath, result.Weights); err != nil {
			return err
		}
		if err := s0_data.WriteCSVFile(rpath, result.Returns); err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("Exported %s, %s", filepath.Base(wpath), filepath.Base(rpath)))
	}

	if weightsSave {
		if err := saveResult(ctx, rt, result); err != nil {
			return err
		}
	}
	return nil
}

func printWeightsTail(result *backtest.Result, n int) {
	columns := result.Weights.Columns
	PrintDoubleSeparator()
	fmt.Printf("  %s (%s)  %s ~ %s\n", result.Preset, result.EngineName,
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	PrintSeparator()

	header := append([]string{"Date"}, columns...)
	widths := make([]int, len(header))
	widths[0] = 10
	for i := 1; i < len(widths); i++ {
		widths[i] = 7
	}
	PrintTableHeader(header, widths)

	start := result.Weights.NRows() - n
	if start < 0 {
		start = 0
	}
	for i := start; i < result.Weights.NRows(); i++ {
		row := []string{result.Weights.Dates[i].Format("2006-01-02")}
		for _, w := range result.Weights.Values[i] {
			row = append(row, fmt.Sprintf("%.4f", w))
		}
		PrintTableRow(row, widths)
	}
	fmt.Printf("\n  Rebalances: %d  Duration: %v\n", result.RebalanceCount, result.Duration)
}

func saveResult(ctx context.Context, rt *runtime, result *backtest.Result) error {
	db, err := rt.database(ctx)
	if err != nil {
		return err
	}

	snap, err := strategyconfig.NewRunSnapshot(rt.strategy, rt.strategyYAML, result.Preset, result.Weights.NRows())
	if err != nil {
		return err
	}

	repo := portfolio.NewRepository(db.Pool)
	if err := repo.SaveWeights(ctx, result.Preset, result.Weights); err != nil {
		return err
	}
	if err := repo.SaveRunSnapshot(ctx, snap); err != nil {
		return err
	}
	if err := audit.NewRepository(db.Pool).SavePerformanceReport(ctx, result.Preset, snap.RunID, result.Report); err != nil {
		return err
	}

	rt.log.WithFields(map[string]interface{}{
		"preset": result.Preset,
		"run_id": snap.RunID,
		"hash":   snap.ConfigHash[:12],
	}).Info("Run saved")
	PrintSuccess(fmt.Sprintf("Saved run %s", snap.RunID))
	return nil
}
