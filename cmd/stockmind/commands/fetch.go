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

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [source]",
	Short: "抓取原始資料",
	Long: `只抓取原始資料，不執行轉換步驟。

來源:
  statements - HiStock 三大財務報表
  prices     - TWSE 每日股價
  posts      - PTT 看板文章與推文
  news       - Anue 新聞列表
  all        - 以上全部

Example:
  go run ./cmd/stockmind fetch statements --symbols 2330,2317
  go run ./cmd/stockmind fetch posts
  go run ./cmd/stockmind fetch all --symbols 2330`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var (
	fetchSymbols    []string
	fetchBoards     []string
	fetchCategories []string
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVar(&fetchSymbols, "symbols", nil, "股票代號 (例: 2330,2317)")
	fetchCmd.Flags().StringSliceVar(&fetchBoards, "boards", nil, "PTT 看板 (預設取 pipeline.yaml 的 sources.social.board)")
	fetchCmd.Flags().StringSliceVar(&fetchCategories, "categories", []string{"tw_stock"}, "新聞分類")
}

func runFetch(cmd *cobra.Command, args []string) error {
	source := args[0]

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boards := fetchBoards
	if len(boards) == 0 {
		boards = []string{d.cfg.Pipeline.Sources.Social.Board}
	}

	needSymbols := func() error {
		if len(fetchSymbols) == 0 {
			return fmt.Errorf("source %s needs --symbols", source)
		}
		return nil
	}

	var records []runlog.RunRecord
	switch source {
	case "statements":
		if err := needSymbols(); err != nil {
			return err
		}
		records = d.orchestrator.RunBatch(ctx, fetchSymbols, []pipeline.Step{d.factory.FetchStatementsStep()})
	case "prices":
		if err := needSymbols(); err != nil {
			return err
		}
		records = d.orchestrator.RunBatch(ctx, fetchSymbols, []pipeline.Step{d.factory.FetchPricesStep()})
	case "posts":
		records = d.orchestrator.RunBatch(ctx, boards, []pipeline.Step{d.factory.FetchPostsStep()})
	case "news":
		records = d.orchestrator.RunBatch(ctx, fetchCategories, []pipeline.Step{d.factory.FetchNewsStep()})
	case "all":
		if err := needSymbols(); err != nil {
			return err
		}
		records = d.orchestrator.RunBatch(ctx, fetchSymbols, []pipeline.Step{
			d.factory.FetchStatementsStep(),
			d.factory.FetchPricesStep(),
		})
		records = append(records, d.orchestrator.RunBatch(ctx, boards, []pipeline.Step{d.factory.FetchPostsStep()})...)
		records = append(records, d.orchestrator.RunBatch(ctx, fetchCategories, []pipeline.Step{d.factory.FetchNewsStep()})...)
	default:
		return fmt.Errorf("unknown source: %s (valid: statements, prices, posts, news, all)", source)
	}

	if err := d.runLog.Append(records); err != nil {
		d.log.WithError(err).Error("Failed to append run log")
	}
	printRecords(records)

	if pipeline.AnyFailed(records) {
		return fmt.Errorf("fetch finished with failures")
	}
	return nil
}
