package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wenhao/stockmind/backend/internal/pipeline"
	"github.com/wenhao/stockmind/backend/internal/runlog"
	"github.com/wenhao/stockmind/backend/pkg/database"
)

// pipelineCmd represents the pipeline command
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "資料管線",
	Long: `執行資料管線：抓取外部資料、清理、產出衍生資料。

這個命令會:
- 從 TWSE 抓每日股價
- 從 HiStock 抓三大財務報表
- 從 PTT 抓看板文章與推文
- 從 Anue 抓新聞列表
- 產出財務比率 CSV 與訓練資料 JSONL

轉換步驟走新舊檔時間比對，輸入沒變就跳過。

Example:
  go run ./cmd/stockmind pipeline run symbols --symbols 2330,2317
  go run ./cmd/stockmind pipeline run boards
  go run ./cmd/stockmind pipeline run all --symbols 2330`,
}

// pipelineRunCmd represents the run subcommand
var pipelineRunCmd = &cobra.Command{
	Use:   "run [target]",
	Short: "執行管線批次",
	Long: `對指定目標執行一個批次。

目標:
  symbols - 股票代號 (財報 + 股價 + 比率 + 情境)
  boards  - PTT 看板 (文章 + 情緒標註)
  news    - 新聞分類 (新聞列表)
  all     - 以上全部

任何一個 identifier 失敗，其餘照常執行，但整個程序以非零值結束。

Example:
  go run ./cmd/stockmind pipeline run symbols --symbols 2330,2317
  go run ./cmd/stockmind pipeline run news --categories tw_stock`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

var (
	// Pipeline flags
	pipelineSymbols    []string
	pipelineBoards     []string
	pipelineCategories []string
)

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)

	pipelineRunCmd.Flags().StringSliceVar(&pipelineSymbols, "symbols", nil, "股票代號 (例: 2330,2317)")
	pipelineRunCmd.Flags().StringSliceVar(&pipelineBoards, "boards", nil, "PTT 看板 (預設取 pipeline.yaml 的 sources.social.board)")
	pipelineRunCmd.Flags().StringSliceVar(&pipelineCategories, "categories", []string{"tw_stock"}, "新聞分類")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	target := args[0]

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	// Ctrl+C finishes the identifier in flight, then stops
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boards := pipelineBoards
	if len(boards) == 0 {
		boards = []string{d.cfg.Pipeline.Sources.Social.Board}
	}

	var records []runlog.RunRecord
	switch target {
	case "symbols":
		if len(pipelineSymbols) == 0 {
			return fmt.Errorf("target symbols needs --symbols")
		}
		records = d.orchestrator.RunBatch(ctx, pipelineSymbols, d.factory.SymbolSteps())
	case "boards":
		records = d.orchestrator.RunBatch(ctx, boards, d.factory.BoardSteps())
	case "news":
		records = d.orchestrator.RunBatch(ctx, pipelineCategories, d.factory.NewsSteps())
	case "all":
		if len(pipelineSymbols) == 0 {
			return fmt.Errorf("target all needs --symbols")
		}
		records = d.orchestrator.RunBatch(ctx, pipelineSymbols, d.factory.SymbolSteps())
		records = append(records, d.orchestrator.RunBatch(ctx, boards, d.factory.BoardSteps())...)
		records = append(records, d.orchestrator.RunBatch(ctx, pipelineCategories, d.factory.NewsSteps())...)
	default:
		return fmt.Errorf("unknown target: %s (valid: symbols, boards, news, all)", target)
	}

	if err := d.runLog.Append(records); err != nil {
		d.log.WithError(err).Error("Failed to append run log")
	}
	persistRecords(ctx, d, records)
	printRecords(records)

	if pipeline.AnyFailed(records) {
		return fmt.Errorf("pipeline finished with failures")
	}
	return nil
}

// persistRecords saves records to Postgres when DATABASE_URL is set.
// Best effort: the JSONL run log is the primary record.
func persistRecords(ctx context.Context, d *deps, records []runlog.RunRecord) {
	if d.cfg.Database.URL == "" {
		return
	}

	db, err := database.New(d.cfg)
	if err != nil {
		d.log.WithError(err).Warn("Skipping run record persistence")
		return
	}
	defer db.Close()

	repo := runlog.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		d.log.WithError(err).Warn("Skipping run record persistence")
		return
	}
	if err := repo.Save(ctx, records); err != nil {
		d.log.WithError(err).Warn("Failed to persist run records")
	}
}

// printRecords prints the per-identifier outcome table
func printRecords(records []runlog.RunRecord) {
	fmt.Println()
	PrintTableHeader([]string{"Identifier", "State", "Steps"}, []int{16, 18, 40})

	for i := range records {
		rec := &records[i]
		var steps []string
		for _, s := range rec.Steps {
			steps = append(steps, fmt.Sprintf("%s=%s", s.Step, s.Status))
		}
		PrintTableRow([]string{rec.Identifier, rec.State, strings.Join(steps, " ")}, []int{16, 18, 40})
	}

	succeeded, failed := 0, 0
	for i := range records {
		if records[i].Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	fmt.Println()
	if failed > 0 {
		PrintError(fmt.Sprintf("%d/%d identifiers failed", failed, len(records)))
	} else {
		PrintSuccess(fmt.Sprintf("%d identifiers processed", succeeded))
	}
}
