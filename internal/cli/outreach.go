package cli

import (
	"context"
	"fmt"

	"hirelens/internal/common"
	"hirelens/internal/types"

	"github.com/spf13/cobra"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach [resume-file]",
	Short: "Draft (and optionally send) a personalised outreach email",
	Long: `Analyze a resume, then draft a recruiting email to the candidate that
references their strengths and the role on offer.

The draft is printed by default. Pass --send to deliver it to the address
found in the resume, or --send-to to deliver it somewhere else. Delivery
uses SMTP when email.enabled is set and is only logged otherwise.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if outreachConfig.OutputFormat == "" {
			outreachConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if outreachCompany == "" {
			outreachCompany = cfg.Email.Company
		}
		return common.ValidateOutputFormat(outreachConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runOutreach,
}

var (
	outreachConfig  common.CommandConfig
	outreachRole    string
	outreachCompany string
	outreachSendTo  string
	outreachSend    bool
)

func init() {
	outreachCmd.Flags().StringVarP(&outreachConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	outreachCmd.Flags().StringVar(&outreachConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	outreachCmd.Flags().StringVarP(&outreachRole, "role", "r", "", "Role offered to the candidate")
	outreachCmd.Flags().StringVarP(&outreachCompany, "company", "c", "", "Hiring company (default from email.company)")
	outreachCmd.Flags().StringVar(&outreachSendTo, "send-to", "", "Send the email to this address")
	outreachCmd.Flags().BoolVar(&outreachSend, "send", false, "Send the email to the address found in the resume")
	_ = outreachCmd.MarkFlagRequired("role")

	registerFormatCompletion(outreachCmd)
}

func runOutreach(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, err := newServices(cmd.Context(), cfg, logger, serviceOptions{outreach: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	outreachOperation := func(ctx context.Context, files []types.ResumeFile) (*types.OutreachEmail, error) {
		analysis, err := svc.analyzer.Analyze(ctx, files[0], outreachRole, nil)
		if err != nil {
			return nil, err
		}

		draft, err := svc.composer.Compose(ctx, analysis, outreachRole, outreachCompany)
		if err != nil {
			return nil, err
		}

		if outreachSendTo != "" {
			draft.To = outreachSendTo
		}
		if outreachSend || outreachSendTo != "" {
			if draft.To == "" {
				return nil, fmt.Errorf("no recipient: the resume has no email address, use --send-to")
			}
			draft.Sent = svc.sender.Send(ctx, draft.To, draft.Subject, draft.Body)
			if !draft.Sent {
				logger.Warn("Outreach email was not delivered", "to", draft.To)
			}
		}
		return draft, nil
	}

	if err := common.RunFileCommand(
		cmd.Context(),
		logger,
		outreachConfig,
		cfg.App.MaxFileSize,
		args,
		outreachOperation,
	); err != nil {
		return fmt.Errorf("failed to draft outreach email: %w", err)
	}
	logger.Info("Outreach email drafted", "sent", outreachSend || outreachSendTo != "")
	return nil
}
