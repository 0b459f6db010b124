package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile  string
	env         string
	verbose     bool
	priceSource string
	pricesPath  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Sector rotation weight engine",
	Long: `Sector rotation weight engine CLI

12개 섹터 ETF 유니버스에 대한 포트폴리오 비중 계산기.
  - momentum:      모멘텀 상위 종목 역변동성 가중 (21일 리밸런싱)
  - mean_variance: 평균-분산 최적화 (gamma preset)

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant fetch --csv data/prices.csv
  go run ./cmd/quant weights momentum
  go run ./cmd/quant grade --score all --report momentum
  go run ./cmd/quant data-check
  go run ./cmd/quant test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "strategy YAML (default: STRATEGY_CONFIG or built-in)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production|test)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&priceSource, "source", sourceCSV, "price source (csv|db|yahoo)")
	rootCmd.PersistentFlags().StringVar(&pricesPath, "prices", "", "price CSV path (default: $DATA_DIR/prices.csv)")
}
