package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/audit"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/backtest"
)

var gradeArgs audit.Args

// gradeCmd runs the grading checks and report views
var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Preset 채점 및 리포트",
	Long: `Preset을 채점하고 성과 리포트를 출력합니다.
모든 플래그는 반복 가능하며 'all'은 모든 preset을 의미합니다.

Flags:
  --score        채점 (min sharpe, 벤치마크 초과, 참조 테이블 일치)
  --allocation   최종 비중
  --performance  벤치마크 대비 성과
  --report       상세 성과 지표
  --cumulative   월말 누적 수익률

Example:
  go run ./cmd/quant grade --score all
  go run ./cmd/quant grade --score momentum --performance momentum
  go run ./cmd/quant grade --report mv_gamma100 --cumulative mv_gamma100`,
	RunE: runGrade,
}

func init() {
	rootCmd.AddCommand(gradeCmd)
	gradeCmd.Flags().StringArrayVar(&gradeArgs.Score, "score", nil, "preset to score (repeatable, 'all')")
	gradeCmd.Flags().StringArrayVar(&gradeArgs.Allocation, "allocation", nil, "preset allocation to print (repeatable)")
	gradeCmd.Flags().StringArrayVar(&gradeArgs.Performance, "performance", nil, "preset performance vs benchmark (repeatable)")
	gradeCmd.Flags().StringArrayVar(&gradeArgs.Report, "report", nil, "preset report (repeatable)")
	gradeCmd.Flags().StringArrayVar(&gradeArgs.Cumulative, "cumulative", nil, "preset cumulative returns (repeatable)")
}

func runGrade(cmd *cobra.Command, args []string) error {
	if gradeArgs.Empty() {
		return fmt.Errorf("nothing to do: pass at least one of --score, --allocation, --performance, --report, --cumulative")
	}

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

	analyzer := audit.NewAnalyzer(rt.log)
	runner := backtest.NewRunner(backtest.NewEngine(rt.strategy, analyzer, rt.log), rt.strategy, prices)

	judge := audit.NewJudge(runner, analyzer, rt.strategy, os.Stdout, rt.log)
	score, err := judge.Run(ctx, gradeArgs)
	if err != nil {
		return err
	}
	if score != nil && score.Points < score.MaxPoints {
		rt.log.WithFields(map[string]interface{}{
			"points": score.Points,
			"max":    score.MaxPoints,
		}).Warn("Not every check passed")
	}
	return nil
}
