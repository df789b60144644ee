package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/service"
	"github.com/jhogstrom/ess-arbetsschema/internal/sheet"
	"github.com/jhogstrom/ess-arbetsschema/pkg/google"
)

func emailsCmd(a *app) *cobra.Command {
	var members, sheetID string
	var ids []string
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Copy the e-mail addresses of a list of members to the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sp := &a.cfg.Spaceplan
			override(cmd, "members", &sp.Members, members)

			path, err := sheet.Resolve(sp.Members, a.cfg.Paths.BoatInfoDirs, a.logger)
			if err != nil {
				return err
			}
			t, err := sheet.ReadFile(path)
			if err != nil {
				return err
			}
			records, err := service.ReadMembers(t, sp.Columns, a.logger)
			if err != nil {
				return err
			}

			want := service.NormalizeIDs(ids, a.logger)
			if sheetID != "" {
				requests, err := a.loader().Load(ctx, sheetID)
				if err != nil {
					return err
				}
				fromSheet, err := service.RequestedMembers(requests, sp.Columns.RequestMemberID, a.logger)
				if err != nil {
					return err
				}
				want = append(want, fromSheet...)
			}
			if len(want) == 0 {
				return fmt.Errorf("no members given, use --sheetid or --ids")
			}

			emails := service.MemberEmails(records, want)
			service.CopyRecipients(emails, a.logger)
			for _, e := range emails {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&members, "members", "", "member workbook with e-mail addresses")
	f.StringVar(&sheetID, "sheetid", "", "sheet id listing member numbers")
	f.StringSliceVar(&ids, "ids", nil, "member numbers, comma separated")
	return cmd
}

func sendmailCmd(a *app) *cobra.Command {
	var (
		receiver     string
		template     string
		replacements []string
		dryRun       bool
		force        bool
	)
	cmd := &cobra.Command{
		Use:   "sendmail",
		Short: "Mail the files of the next report date to everyone booked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mc := &a.cfg.Mail
			override(cmd, "receiver", &mc.Receiver, receiver)
			override(cmd, "template", &mc.Template, template)
			override(cmd, "dry-run", &mc.DryRun, dryRun)

			manifest, err := service.ReadManifest(a.cfg.Paths.Manifest)
			if err != nil {
				return err
			}

			var mailer service.Mailer
			if !mc.DryRun {
				opt, err := a.google(ctx)
				if err != nil {
					return err
				}
				if mailer, err = google.NewGmailClient(ctx, a.logger, opt); err != nil {
					return err
				}
			}
			history, closeDB, err := a.history()
			if err != nil {
				return err
			}
			defer closeDB()

			svc := service.NewMailService(mailer, history, a.logger)
			res, err := svc.SendNext(ctx, manifest, service.MailRequest{
				Sender:       mc.Sender,
				Receiver:     splitReceivers(mc.Receiver),
				Cc:           mc.Cc,
				Template:     mc.Template,
				Subject:      mc.Subject,
				Replacements: service.ParseReplacements(replacements),
				DryRun:       mc.DryRun,
				Force:        force,
			})
			if err != nil {
				return err
			}
			a.logger.Info("sendmail done",
				zap.String("date", res.Date),
				zap.Bool("skipped", res.Skipped),
				zap.Bool("dry_run", res.DryRun),
				zap.Int("recipients", res.Recipients),
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&receiver, "receiver", "", "To address, comma separated")
	f.StringVar(&template, "template", "", "mail template, .html or plain text")
	f.StringArrayVarP(&replacements, "replacement", "r", nil, "template replacement KEY=VALUE, repeatable")
	f.BoolVar(&dryRun, "dry-run", false, "log the message instead of sending it")
	f.BoolVar(&force, "force", false, "send even if this date was mailed before")
	return cmd
}

func splitReceivers(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
