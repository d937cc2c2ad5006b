package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-emotion-comic/internal/pipeline"
	"github.com/shouni/go-emotion-comic/pkg/imagegen"
)

// promptsCmd は、画像を生成せずに外部ツール用のプロンプトだけを標準出力に書くのだ。
var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "外部の画像ツール向けプロンプトを出力しますなのだ。",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.ImageProvider = imagegen.ProviderNone
		return nil
	},
	RunE: promptsCommand,
}

func init() {
	addWizardFlags(promptsCmd)
}

func promptsCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return pipeline.ExecutePrompts(ctx, app, cmd.OutOrStdout())
}
