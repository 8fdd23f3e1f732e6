package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wenhao/stockmind/backend/internal/runlog"
	"github.com/wenhao/stockmind/backend/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "查詢最近的管線執行紀錄",
	Long: `列出最近的管線執行紀錄。

有設定 DATABASE_URL 時從 Postgres 讀，否則讀儲存目錄下的 runs.jsonl。

Example:
  go run ./cmd/stockmind status
  go run ./cmd/stockmind status --limit 50`,
	RunE: runStatus,
}

var statusLimit int

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "最多顯示幾筆")
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.close()

	var records []runlog.RunRecord
	if d.cfg.Database.URL != "" {
		records, err = recentFromDatabase(d)
	} else {
		records, err = recentFromRunLog(d.runLog.Path())
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No run records yet")
		return nil
	}

	PrintTableHeader([]string{"Finished", "Identifier", "State"}, []int{20, 16, 18})
	failed := 0
	for i := range records {
		rec := &records[i]
		if rec.Failed() {
			failed++
		}
		PrintTableRow([]string{
			rec.FinishedAt.Format("2006-01-02 15:04:05"),
			rec.Identifier,
			rec.State,
		}, []int{20, 16, 18})
	}

	fmt.Println()
	PrintKeyValue("Records", fmt.Sprintf("%d", len(records)), 7)
	PrintKeyValue("Failed", fmt.Sprintf("%d", failed), 7)
	return nil
}

func recentFromDatabase(d *deps) ([]runlog.RunRecord, error) {
	db, err := database.New(d.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := runlog.NewRepository(db)
	return repo.ListRecent(context.Background(), statusLimit)
}

// recentFromRunLog tails the JSONL run log, newest first
func recentFromRunLog(path string) ([]runlog.RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	var all []runlog.RunRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec runlog.RunRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue // skip corrupt lines
		}
		all = append(all, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read run log: %w", err)
	}

	if len(all) > statusLimit {
		all = all[len(all)-statusLimit:]
	}
	// Newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}
