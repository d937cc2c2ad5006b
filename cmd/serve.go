package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-emotion-comic/internal/server"
)

// serveCmd は、5段階ウィザードの Web 画面を起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Web ウィザードを起動しますなのだ。",
	RunE:  serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&opts.Addr, "addr", "", "待ち受けアドレス（例: :8080）なのだ。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := server.New(app, slog.Default())
	if err != nil {
		return err
	}
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("Web サーバーが異常終了したのだ: %w", err)
	}
	return nil
}
