package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-emotion-comic/internal/pipeline"
)

// generateCmd は、フラグの入力で5つのステップを実行し、成果物を保存するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "4コマ漫画を生成して保存しますなのだ。",
	Long: `フラグで指定した年齢層・状況・感情・理由から物語と画像を生成し、
--output-dir に comic.md、prompts.txt、images/ を書き出すのだよ。`,
	RunE: generateCommand,
}

func init() {
	addWizardFlags(generateCmd)
	generateCmd.Flags().BoolVar(&opts.Strip, "strip", false, "4コマを1枚にまとめた画像も生成するのだ。")
	generateCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "成果物の保存先ディレクトリなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	slog.Info("漫画生成パイプラインを起動するのだ！",
		"llm", cfg.LLMProvider,
		"image", cfg.ImageProvider,
		"output", cfg.OutputDir)

	result, err := pipeline.ExecuteGenerate(ctx, app)
	if err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.MarkdownPath)
	return nil
}
