package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockmind",
	Short: "StockMind - 台股資料管線",
	Long: `StockMind Unified CLI

台股分析產品的資料管線。
抓取財報、股價、社群貼文與新聞，清理後產出財務比率與訓練資料。

Usage:
  go run ./cmd/stockmind [command]

Examples:
  go run ./cmd/stockmind pipeline run symbols --symbols 2330,2317
  go run ./cmd/stockmind fetch prices --symbols 2330
  go run ./cmd/stockmind process ratios --symbols 2330
  go run ./cmd/stockmind scheduler start --symbols 2330
  go run ./cmd/stockmind status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&pipelineFile, "pipeline", "pipeline.yaml", "pipeline definition file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
