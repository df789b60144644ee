package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/k3a/html2text"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	"github.com/jhogstrom/ess-arbetsschema/internal/repository"
	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// ── mail errors ──

var (
	ErrManifestEmpty    = errors.New("manifest lists no dates")
	ErrNoRecipientFile  = errors.New("no recipient file for date")
	ErrNoMailReceiver   = errors.New("mail receiver is required")
	ErrAttachmentAbsent = errors.New("attachment not found")
)

// Mailer sends a message and returns its id.
type Mailer interface {
	Send(ctx context.Context, msg *model.MailMessage) (string, error)
}

// MailRequest describes one "next date" mailing.
type MailRequest struct {
	Sender       string
	Receiver     []string
	Cc           []string
	Template     string
	Subject      string // may contain {date}
	Replacements map[string]string
	DryRun       bool
	Force        bool
}

// MailResult reports what was (or would have been) sent.
type MailResult struct {
	Date        string
	MessageID   string
	Recipients  int
	Attachments []string
	Skipped     bool
	DryRun      bool
}

// MailService mails the report of the earliest manifest date.
type MailService interface {
	SendNext(ctx context.Context, manifest *model.Manifest, req MailRequest) (*MailResult, error)
}

type mailService struct {
	mailer  Mailer
	history repository.DispatchRepository
	logger  *zap.Logger
}

// NewMailService creates a MailService. history may be nil, in which case
// nothing is recorded and nothing is skipped.
func NewMailService(mailer Mailer, history repository.DispatchRepository, logger *zap.Logger) MailService {
	return &mailService{mailer: mailer, history: history, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// SendNext
// ═══════════════════════════════════════════════════════════
//
// The recipient file of the date goes to Bcc, every other file of the date is
// attached. Replacements fill {key} placeholders of the template; {date} is
// always set.

func (s *mailService) SendNext(ctx context.Context, manifest *model.Manifest, req MailRequest) (*MailResult, error) {
	if len(req.Receiver) == 0 {
		return nil, ErrNoMailReceiver
	}
	dates := manifest.Dates()
	if len(dates) == 0 {
		return nil, ErrManifestEmpty
	}
	date := dates[0]
	res := &MailResult{Date: date, DryRun: req.DryRun}

	var recipientFile string
	for _, f := range manifest.Files[date] {
		if strings.HasSuffix(f, RecipientFileExt) {
			if recipientFile == "" {
				recipientFile = f
			}
			continue
		}
		res.Attachments = append(res.Attachments, f)
	}
	if recipientFile == "" {
		return nil, fmt.Errorf("%s: %w", date, ErrNoRecipientFile)
	}
	s.logger.Info("selected recipient file", zap.String("date", date), zap.String("file", recipientFile))

	target := strings.Join(req.Receiver, ",")
	if s.history != nil && !req.Force && !req.DryRun {
		sent, err := s.history.Exists(ctx, model.DispatchMail, date, target, "")
		if err != nil {
			return nil, fmt.Errorf("check mail history: %w", err)
		}
		if sent {
			s.logger.Warn("mail already sent for date, use --force to send again", zap.String("date", date))
			res.Skipped = true
			return res, nil
		}
	}

	bcc, err := ReadRecipientFile(recipientFile)
	if err != nil {
		return nil, err
	}
	res.Recipients = len(bcc)
	s.logger.Info("number of recipients", zap.Int("count", len(bcc)))

	for _, a := range res.Attachments {
		if _, err := os.Stat(a); err != nil {
			return nil, fmt.Errorf("%s: %w", a, ErrAttachmentAbsent)
		}
	}

	replacements := make(map[string]string, len(req.Replacements)+1)
	for k, v := range req.Replacements {
		replacements[k] = v
	}
	replacements["date"] = date

	msg, err := BuildMessage(req.Template, replacements)
	if err != nil {
		return nil, err
	}
	msg.From = req.Sender
	msg.To = req.Receiver
	msg.Cc = req.Cc
	msg.Bcc = bcc
	msg.Subject = ApplyReplacements(req.Subject, replacements)
	msg.Attachments = res.Attachments

	if req.DryRun {
		s.logger.Info("dry run enabled, not sending email")
		s.logger.Info("To", zap.Strings("to", msg.To))
		s.logger.Info("Cc", zap.Strings("cc", msg.Cc))
		s.logger.Info("Bcc", zap.Strings("bcc", msg.Bcc))
		s.logger.Info("Subject", zap.String("subject", msg.Subject))
		for _, a := range msg.Attachments {
			s.logger.Info("Attachment", zap.String("file", filepath.Base(a)))
		}
		return res, nil
	}

	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		s.logger.Error("send mail failed", zap.String("date", date), zap.Error(err))
		return nil, fmt.Errorf("send mail for %s: %w", date, err)
	}
	res.MessageID = id
	s.logger.Info("message sent", zap.String("id", id), zap.String("date", date))

	if s.history != nil {
		d := &model.Dispatch{Kind: model.DispatchMail, Date: date, Target: target, RemoteID: id}
		if err := s.history.Create(ctx, d); err != nil {
			s.logger.Error("record mail dispatch failed", zap.Error(err))
		}
	}
	return res, nil
}

// ApplyReplacements replaces every {key} in s. Keys are applied in sorted order
// so the result does not depend on map iteration.
func ApplyReplacements(s string, replacements map[string]string) string {
	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s = strings.ReplaceAll(s, "{"+k+"}", replacements[k])
	}
	return s
}

// ParseReplacements turns KEY=VALUE pairs into a map. Entries without "=" are
// ignored.
func ParseReplacements(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// BuildMessage renders the mail body from a template file. An .html/.htm
// template is sent as HTML with a plain text alternative; any other template is
// plain text and its line breaks are kept in the HTML part.
func BuildMessage(template string, replacements map[string]string) (*model.MailMessage, error) {
	data, err := os.ReadFile(template)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("mail template %s: %w", template, apperrors.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("read mail template %s: %w", template, err)
	}
	content := ApplyReplacements(string(data), replacements)

	switch strings.ToLower(filepath.Ext(template)) {
	case ".html", ".htm":
		return &model.MailMessage{
			HTML: content,
			Text: html2text.HTML2Text(content),
		}, nil
	default:
		return &model.MailMessage{
			Text: content,
			HTML: TextToHTML(content),
		}, nil
	}
}

// TextToHTML escapes s and turns its line breaks into <br>.
func TextToHTML(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>\n")
}
