package model

// MailMessage is an outgoing e-mail. HTML is optional; when set, Text is the
// plain alternative. Attachments are local file paths. An empty From is
// filled in by Gmail with the authorized account.
type MailMessage struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Text        string
	HTML        string
	Attachments []string
}
