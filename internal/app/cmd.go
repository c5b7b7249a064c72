package app

import "strings"

// Command はcryptodashバイナリのサブコマンドを表す。
type Command string

const (
	// CommandServe はダッシュボードAPIを起動する。
	CommandServe Command = "serve"
	// CommandWorker は古い日次インサイトを定期削除するワーカーを起動する。
	CommandWorker Command = "worker"
	// CommandMigrate は埋め込みスキーマ（users, preferences, votes, daily_insights）を適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のAPIの /health を叩く。distrolessイメージのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// Usage はcryptodashの使い方。
const Usage = `usage: cryptodash [command]

commands:
  serve        ダッシュボードAPIを起動する（デフォルト）
  worker       INSIGHT_RETENTION_DAYSを超えた日次インサイトをCLEANUP_INTERVALごとに削除する
  migrate      データベーススキーマを最新にする
  healthcheck  SERVER_PORTで起動中のAPIの /health を確認する
  help         この使い方を表示する
`

// ParseCommand は先頭の引数からサブコマンドを決める。
// 引数なし・未知のコマンドはserveとして扱い、2番目以降の引数は無視する。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch strings.ToLower(args[0]) {
	case "worker":
		return CommandWorker
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	case "help", "-h", "--help":
		return CommandHelp
	default:
		return CommandServe
	}
}
