package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wenhao/stockmind/backend/internal/pipeline"
	"github.com/wenhao/stockmind/backend/internal/runlog"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process [target]",
	Short: "執行轉換步驟",
	Long: `只執行轉換步驟，原始資料必須已經抓好。

輸入沒變的轉換會被跳過 (新舊檔時間比對)。

目標:
  ratios    - 財務比率 CSV
  scenarios - 股價情境訓練資料
  sentiment - 情緒標註訓練資料
  all       - 以上全部

Example:
  go run ./cmd/stockmind process ratios --symbols 2330,2317
  go run ./cmd/stockmind process sentiment
  go run ./cmd/stockmind process all --symbols 2330`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var (
	processSymbols []string
	processBoards  []string
)

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringSliceVar(&processSymbols, "symbols", nil, "股票代號 (例: 2330,2317)")
	processCmd.Flags().StringSliceVar(&processBoards, "boards", nil, "PTT 看板 (預設取 pipeline.yaml 的 sources.social.board)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	target := args[0]

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boards := processBoards
	if len(boards) == 0 {
		boards = []string{d.cfg.Pipeline.Sources.Social.Board}
	}

	needSymbols := func() error {
		if len(processSymbols) == 0 {
			return fmt.Errorf("target %s needs --symbols", target)
		}
		return nil
	}

	var records []runlog.RunRecord
	switch target {
	case "ratios":
		if err := needSymbols(); err != nil {
			return err
		}
		records = d.orchestrator.RunBatch(ctx, processSymbols, []pipeline.Step{d.factory.RatiosStep()})
	case "scenarios":
		if err := needSymbols(); err != nil {
			return err
		}
		records = d.orchestrator.RunBatch(ctx, processSymbols, []pipeline.Step{d.factory.ScenariosStep()})
	case "sentiment":
		records = d.orchestrator.RunBatch(ctx, boards, []pipeline.Step{d.factory.SentimentStep()})
	case "all":
		if err := needSymbols(); err != nil {
			return err
		}
		records = d.orchestrator.RunBatch(ctx, processSymbols, []pipeline.Step{
			d.factory.RatiosStep(),
			d.factory.ScenariosStep(),
		})
		records = append(records, d.orchestrator.RunBatch(ctx, boards, []pipeline.Step{d.factory.SentimentStep()})...)
	default:
		return fmt.Errorf("unknown target: %s (valid: ratios, scenarios, sentiment, all)", target)
	}

	if err := d.runLog.Append(records); err != nil {
		d.log.WithError(err).Error("Failed to append run log")
	}
	printRecords(records)

	if pipeline.AnyFailed(records) {
		return fmt.Errorf("process finished with failures")
	}
	return nil
}
