package cli

import (
	"fmt"

	"hirelens/internal/common"
	"hirelens/internal/watcher"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyze resumes dropped into an inbox directory",
	Long: `Watch watch.inboxDir and analyze every resume that appears in it or is
rewritten. A report named after the resume is written to watch.outputDir in
the watch.format output format. Files already in the inbox are analysed at
startup.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("inbox", "", "Inbox directory (default from watch.inboxDir)")
	watchCmd.Flags().String("output-dir", "", "Report directory (default from watch.outputDir)")
	watchCmd.Flags().StringP("role", "r", "", "Target role (default from watch.role)")
	watchCmd.Flags().String("format", "", "Report format: json, text, or markdown")

	registerFormatCompletion(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	overrides := map[string]*string{
		"inbox":      &cfg.Watch.InboxDir,
		"output-dir": &cfg.Watch.OutputDir,
		"role":       &cfg.Watch.Role,
		"format":     &cfg.Watch.Format,
	}
	for flag, target := range overrides {
		if cmd.Flags().Changed(flag) {
			*target, _ = cmd.Flags().GetString(flag)
		}
	}

	if cfg.Watch.Role == "" {
		return fmt.Errorf("a target role is required (--role or watch.role)")
	}
	if err := common.ValidateOutputFormat(cfg.Watch.Format, cfg.App.SupportedFormats); err != nil {
		return err
	}

	svc, err := newServices(cmd.Context(), cfg, logger, serviceOptions{store: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	return watcher.New(cfg.Watch, svc.analyzer, cfg.App.MaxFileSize, logger).Run(cmd.Context())
}
