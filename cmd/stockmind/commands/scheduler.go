package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wenhao/stockmind/backend/internal/scheduler"
	"github.com/wenhao/stockmind/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:     "scheduler",
	Aliases: []string{"schedule"},
	Short:   "排程管理",
	Long: `啟動排程器或管理排程工作。

這個命令會:
- 啟動排程 daemon
- 查詢已註冊的工作
- 立即執行指定工作

Subcommands:
  start   - 啟動排程器
  list    - 已註冊的工作列表
  run     - 立即執行指定工作

Example:
  go run ./cmd/stockmind scheduler start --symbols 2330,2317
  go run ./cmd/stockmind scheduler list
  go run ./cmd/stockmind scheduler run symbol_refresh --symbols 2330`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "啟動排程器",
		Long: `啟動排程器並註冊所有工作。

註冊的工作:
- symbol_refresh: 平日 15:00 (財報 + 股價 + 比率 + 情境)
- social_refresh: 每 6 小時 (PTT 文章 + 情緒標註)
- news_refresh:   每小時 (新聞列表)

排程器可用 Ctrl+C 結束。`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "已註冊的工作列表",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "立即執行指定工作",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var schedulerSymbols []string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringSliceVar(&schedulerSymbols, "symbols", nil, "排程要追蹤的股票代號")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockMind Scheduler ===")
	fmt.Println()

	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	sched.Start()

	PrintSuccess("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.GetAllJobs())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	fmt.Println("Registered jobs:")
	PrintList(sched.GetAllJobs())
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	sched, d, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer d.close()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")
	return nil
}

// initScheduler wires the scheduler; the caller closes the returned deps
func initScheduler() (*scheduler.Scheduler, *deps, error) {
	if len(schedulerSymbols) == 0 {
		return nil, nil, fmt.Errorf("scheduler needs --symbols")
	}

	d, err := initDeps()
	if err != nil {
		return nil, nil, err
	}

	boards := []string{d.cfg.Pipeline.Sources.Social.Board}
	categories := []string{"tw_stock"}

	sched := scheduler.New(d.log)
	if err := sched.AddJob(jobs.NewSymbolRefreshJob(d.orchestrator, d.factory, d.runLog, schedulerSymbols)); err != nil {
		d.close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewSocialRefreshJob(d.orchestrator, d.factory, d.runLog, boards)); err != nil {
		d.close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewNewsRefreshJob(d.orchestrator, d.factory, d.runLog, categories)); err != nil {
		d.close()
		return nil, nil, err
	}

	return sched, d, nil
}
