package main

import (
	"os"

	"github.com/wenhao/stockmind/backend/cmd/stockmind/commands"
)

// main is the entry point for the StockMind CLI
// ⭐ 統一 CLI 進入點: go run ./cmd/stockmind [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
