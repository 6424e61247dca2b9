package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/buscajob/buscajob/internal/model"
)

// ErrEmailConfig is returned when the email settings are incomplete.
var ErrEmailConfig = errors.New("email configuration incomplete")

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// MailSender delivers a raw RFC 5322 message.
type MailSender interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// EmailNotifier mails each report with its JSON file attached.
type EmailNotifier struct {
	from   string
	to     []string
	sender MailSender
	logger *slog.Logger
}

// NewEmailNotifier returns an EmailNotifier. from and at least one recipient
// are required.
func NewEmailNotifier(from string, to []string, sender MailSender, logger *slog.Logger) (*EmailNotifier, error) {
	if from == "" || len(to) == 0 || sender == nil {
		return nil, fmt.Errorf("%w: from and to are required", ErrEmailConfig)
	}
	return &EmailNotifier{from: from, to: to, sender: sender, logger: logger}, nil
}

func (n *EmailNotifier) Notify(ctx context.Context, r model.Report) error {
	msg, err := buildMessage(n.from, n.to, r, time.Now())
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, n.from, n.to, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	n.logger.Info("report email sent", "to", strings.Join(n.to, ","), "subject", r.Subject)
	return nil
}

// buildMessage renders a multipart/mixed message with a plain text body and,
// when r.FilePath is set, the file as an application/json attachment.
func buildMessage(from string, to []string, r model.Report, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", r.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: multipart/mixed; boundary=" + strconv.Quote(mw.Boundary()),
	}
	var msg bytes.Buffer
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.WriteString("\r\n\r\n")

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, fmt.Errorf("building email body: %w", err)
	}
	if err := writeBase64(text, []byte(r.Body)); err != nil {
		return nil, fmt.Errorf("building email body: %w", err)
	}

	if r.FilePath != "" {
		data, err := os.ReadFile(r.FilePath)
		if err != nil {
			return nil, fmt.Errorf("reading attachment: %w", err)
		}
		name := filepath.Base(r.FilePath)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType("application/json", map[string]string{"name": name})},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
		})
		if err != nil {
			return nil, fmt.Errorf("building attachment: %w", err)
		}
		if err := writeBase64(part, data); err != nil {
			return nil, fmt.Errorf("building attachment: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing email: %w", err)
	}
	msg.Write(buf.Bytes())
	return msg.Bytes(), nil
}

// writeBase64 wraps encoded lines at 76 characters.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := w.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := w.Write([]byte(enc + "\r\n"))
	return err
}

// SMTPSender sends through an SMTP relay, upgrading with STARTTLS when the
// server offers it and authenticating with PLAIN when a username is set.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

func (s *SMTPSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	if s.Host == "" {
		return fmt.Errorf("%w: smtp host is required", ErrEmailConfig)
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if s.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}

// sesAPI is the part of the SES client SESSender uses.
type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESSender sends raw messages through Amazon SES.
type SESSender struct {
	client sesAPI
}

// NewSESSender loads the default AWS credential chain for region.
func NewSESSender(ctx context.Context, region string) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &SESSender{client: ses.NewFromConfig(cfg)}, nil
}

func (s *SESSender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	_, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(from),
		Destinations: to,
		RawMessage:   &types.RawMessage{Data: msg},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
