// Command cryptodash は暗号資産ダッシュボードのAPIサーバー・ワーカー・マイグレーションを起動する。
//
// 使い方:
//
//	cryptodash [serve|worker|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/cryptodash/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "cryptodash: %v\n", err)
		os.Exit(1)
	}
}
