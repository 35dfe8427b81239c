package app

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker はワーカーモード（ニュースのプリフェッチと閲覧履歴の削除）で起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// rootOptions は全サブコマンド共通のフラグ。
type rootOptions struct {
	envFile string
}

// NewRootCommand はnewsmanのルートコマンドを生成する。
// サブコマンドを省略した場合はserveとして動作する。
// ログはwに出力する。
func NewRootCommand(w io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "newsman",
		Short:         "newsman - news reader API",
		Long:          "News reader backend with accounts, bookmarks, likes, reading history and aggregated headlines.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, w, opts, CommandServe)
		},
	}
	root.SetOut(w)
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file loaded before reading the environment")

	root.AddCommand(
		newModeCommand(w, opts, CommandServe, "Start the HTTP API server"),
		newModeCommand(w, opts, CommandWorker, "Start the news prefetcher and reading history cleanup"),
		newModeCommand(w, opts, CommandMigrate, "Apply pending database migrations"),
		newHealthcheckCommand(),
	)

	return root
}

func newModeCommand(w io.Writer, opts *rootOptions, mode Command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, w, opts, mode)
		},
	}
}

// newHealthcheckCommand は設定の読み込みを行わない軽量なサブコマンドを生成する。
func newHealthcheckCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   string(CommandHealthcheck),
		Short: "Probe /health of a locally running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHealthcheck(cmd.Context(), port)
		},
	}

	defaultPort := os.Getenv("SERVER_PORT")
	if defaultPort == "" {
		defaultPort = "8080"
	}
	cmd.Flags().StringVar(&port, "port", defaultPort, "port of the API server")

	return cmd
}
