package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// GmailClient sends mail as the authorized user.
type GmailClient struct {
	svc    *gmail.Service
	logger *zap.Logger
}

// NewGmailClient creates a GmailClient.
func NewGmailClient(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*GmailClient, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailClient{svc: svc, logger: logger}, nil
}

// Send delivers msg and returns the Gmail message id.
func (c *GmailClient) Send(ctx context.Context, msg *model.MailMessage) (string, error) {
	raw, err := BuildMIME(msg)
	if err != nil {
		return "", err
	}
	sent, err := c.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send: %w", err)
	}
	c.logger.Debug("gmail message sent", zap.String("id", sent.Id))
	return sent.Id, nil
}

// BuildMIME renders msg as an RFC 5322 message. Gmail reads the recipients
// from the headers, so Bcc is written as a header too; Gmail strips it on
// delivery.
func BuildMIME(msg *model.MailMessage) ([]byte, error) {
	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Cc = msg.Cc
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	if len(msg.Bcc) > 0 {
		e.Headers.Set("Bcc", strings.Join(msg.Bcc, ", "))
	}
	for _, path := range msg.Attachments {
		if err := attach(e, path); err != nil {
			return nil, err
		}
	}

	raw, err := e.Bytes()
	if err != nil {
		return nil, fmt.Errorf("render mail: %w", err)
	}
	return raw, nil
}

func attach(e *email.Email, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("attachment: %w", err)
	}
	defer f.Close()
	if _, err := e.Attach(f, filepath.Base(path), ContentType(path)); err != nil {
		return fmt.Errorf("attachment %s: %w", path, err)
	}
	return nil
}
