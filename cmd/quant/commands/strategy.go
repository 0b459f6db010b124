package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
)

// strategyCmd prints the effective strategy configuration
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "현재 전략 설정 출력",
	Long: `적용 중인 전략 설정(YAML), 설정 해시, 경고를 출력합니다.

Example:
  go run ./cmd/quant strategy
  go run ./cmd/quant strategy --config config/strategy.yaml`,
	RunE: runStrategy,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
}

func runStrategy(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	hash, err := strategyconfig.Hash(rt.strategy)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rt.strategy); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	PrintSeparator()
	PrintKeyValue("Strategy", rt.strategy.Meta.StrategyID+" "+rt.strategy.Meta.Version, 8)
	PrintKeyValue("Hash", hash, 8)
	PrintKeyValue("Presets", fmt.Sprint(rt.strategy.PresetNames()), 8)
	for _, w := range strategyconfig.Warn(rt.strategy) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	return nil
}
