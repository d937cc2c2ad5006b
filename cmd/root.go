package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/go-emotion-comic/internal/builder"
	"github.com/shouni/go-emotion-comic/internal/config"
	"github.com/shouni/go-emotion-comic/pkg/workflow"
)

var (
	opts config.GenerateOptions
	cfg  *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "emotion-comic",
	Short: "気持ちを4コマ漫画にするアシスタントなのだ。",
	Long: `年齢層・状況・感情・理由の4つの入力から、AI が4コマ漫画の物語と画像を生成するのだ。
Web のウィザード（serve）と、フラグで入力するヘッドレス実行（generate / prompts）があるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、全コマンド共通のフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "テキスト生成に使うモデル名なのだ（空ならプロバイダの既定値）。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageProvider, "image-provider", "", "画像生成プロバイダ（gemini / openai / none）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.City, "city", "", "天気を取得する都市名なのだ。")
}

// addWizardFlags は、ヘッドレス実行で使うウィザードの入力フラグを定義するのだ。
func addWizardFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opts.AgeGroup, "age", "adult", "年齢層 (child / teen / adult / senior)")
	cmd.Flags().StringVar(&opts.Gender, "gender", "unspecified", "性別 (female / male / unspecified)")
	cmd.Flags().StringVar(&opts.ArtStyle, "style", "webtoon", "画風 (webtoon / watercolor / anime / crayon)")
	cmd.Flags().StringVar(&opts.Situation, "situation", "", "状況の説明（必須）")
	cmd.Flags().StringVar(&opts.Emotion, "emotion", "", "感情ID（必須）")
	cmd.Flags().StringVar(&opts.Reason, "reason", "", "感情の理由（必須）")
	_ = cmd.MarkFlagRequired("situation")
	_ = cmd.MarkFlagRequired("emotion")
	_ = cmd.MarkFlagRequired("reason")
}

// preRunAppE は、設定を読み込んでロガーを初期化するのだ。
// APIキーが無くても既定値で動くので、ここでは必須チェックをしないのだよ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	loaded.ApplyOptions(opts)
	if err := loaded.Validate(); err != nil {
		return err
	}
	config.SetupLogger(os.Stderr, loaded)
	cfg = loaded
	return nil
}

// buildApp は読み込んだ設定から AppContext を組み立てるのだ。
func buildApp(ctx context.Context) (*builder.AppContext, error) {
	return builder.BuildAppContext(ctx, cfg, workflow.ManagerArgs{})
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addAppFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, generateCmd, promptsCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
