package pkg

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
	gomail "github.com/wneessen/go-mail"

	"mlstudio"
)

var providerRegistry = make(map[EmailProvider]iEmailProvider)
var defaultPriority []EmailProvider

const maxRetries = 2

// InitializeEmailProviders wires the configured outbound email providers.
// Providers missing their configuration stay registered but unready and are
// skipped at send time.
func InitializeEmailProviders() {
	cfg := mlstudio.GetConfig()

	b := &brevoProvider{}
	b.init(cfg)

	s := &smtpProvider{}
	s.init(cfg)

	providerRegistry[EmailProviderBrevo] = b
	providerRegistry[EmailProviderSMTP] = s

	defaultPriority = append(defaultPriority, b.name(), s.name())
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentFromText wraps plain text content, such as a captured run log.
func AttachmentFromText(filename string, content string) Attachment {
	return Attachment{
		Filename:    filename,
		ContentType: "text/plain",
		Data:        []byte(content),
	}
}

type EmailMessage struct {
	To          []string
	CC          []string
	BCC         []string
	Subject     string
	Body        string
	IsHTML      bool
	Attachments []Attachment
}

type iEmailProvider interface {
	init(cfg mlstudio.AppConfig)
	isInitialized() bool
	send(msg EmailMessage) iCustomEmailError
	name() EmailProvider
}

type iCustomEmailError interface {
	error
	Temporary() bool
}

type CustomEmailError struct {
	Msg  string
	Temp bool
}

func (e *CustomEmailError) Error() string   { return e.Msg }
func (e *CustomEmailError) Temporary() bool { return e.Temp }

// SendEmail tries the requested providers in order, retrying temporary
// failures. A permanent failure from a provider aborts the whole send.
func SendEmail(msg EmailMessage, requestedProviders ...EmailProvider) error {
	if len(requestedProviders) == 0 {
		requestedProviders = defaultPriority
	}

	var errs []string

	for _, providerID := range requestedProviders {
		impl, exists := providerRegistry[providerID]
		if !exists || !impl.isInitialized() {
			errs = append(errs, fmt.Sprintf("provider %v: skipped (not ready)", providerID))
			continue
		}

		var lastErr iCustomEmailError
		for i := 0; i < maxRetries; i++ {
			lastErr = impl.send(msg)

			if lastErr == nil {
				return nil
			}

			if !lastErr.Temporary() {
				return fmt.Errorf("permanent error from %v: %w", providerID, lastErr)
			}

			if i < maxRetries-1 {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
			}
		}

		errs = append(errs, fmt.Sprintf("%v after %d attempts: %v", providerID, maxRetries, lastErr))
	}

	return fmt.Errorf("all email providers failed: %s", strings.Join(errs, " | "))
}

type EmailProvider int

const (
	EmailProviderBrevo EmailProvider = iota
	EmailProviderSMTP
)

type brevoProvider struct {
	client      *brevo.APIClient
	fromEmail   string
	fromName    string
	initialized bool
}

func (b *brevoProvider) init(cfg mlstudio.AppConfig) {
	if cfg.BrevoConfig.APIKey == "" || cfg.BrevoConfig.FromEmail == "" {
		return
	}

	apiCfg := brevo.NewConfiguration()
	apiCfg.AddDefaultHeader("api-key", cfg.BrevoConfig.APIKey)
	b.client = brevo.NewAPIClient(apiCfg)
	b.fromEmail = cfg.BrevoConfig.FromEmail
	b.fromName = cfg.BrevoConfig.FromName
	b.initialized = true
}

func (b *brevoProvider) isInitialized() bool { return b.initialized }

func (b *brevoProvider) send(msg EmailMessage) iCustomEmailError {
	email := brevo.SendSmtpEmail{
		Sender:  &brevo.SendSmtpEmailSender{Email: b.fromEmail, Name: b.fromName},
		Subject: msg.Subject,
	}

	for _, to := range msg.To {
		email.To = append(email.To, brevo.SendSmtpEmailTo{Email: to})
	}
	for _, cc := range msg.CC {
		email.Cc = append(email.Cc, brevo.SendSmtpEmailCc{Email: cc})
	}
	for _, bcc := range msg.BCC {
		email.Bcc = append(email.Bcc, brevo.SendSmtpEmailBcc{Email: bcc})
	}

	if msg.IsHTML {
		email.HtmlContent = msg.Body
	} else {
		email.TextContent = msg.Body
	}

	for _, a := range msg.Attachments {
		email.Attachment = append(email.Attachment, brevo.SendSmtpEmailAttachment{
			Name:    a.Filename,
			Content: base64.StdEncoding.EncodeToString(a.Data),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, resp, err := b.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		temp := resp == nil || resp.StatusCode >= 500
		return &CustomEmailError{Msg: fmt.Sprintf("brevo send failed: %v", err), Temp: temp}
	}
	return nil
}

func (b *brevoProvider) name() EmailProvider { return EmailProviderBrevo }

type smtpProvider struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	initialized bool
}

func (s *smtpProvider) init(cfg mlstudio.AppConfig) {
	if cfg.SmtpConfig.Host == "" || cfg.SmtpConfig.Username == "" {
		return
	}

	s.host = cfg.SmtpConfig.Host
	s.port = cfg.SmtpConfig.Port
	s.username = cfg.SmtpConfig.Username
	s.password = cfg.SmtpConfig.Password
	s.from = cfg.SmtpConfig.From
	if s.from == "" {
		s.from = cfg.SmtpConfig.Username
	}
	s.initialized = true
}

func (s *smtpProvider) isInitialized() bool { return s.initialized }

func (s *smtpProvider) send(msg EmailMessage) iCustomEmailError {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return &CustomEmailError{Msg: fmt.Sprintf("failed to set from: %v", err)}
	}
	if err := m.To(msg.To...); err != nil {
		return &CustomEmailError{Msg: fmt.Sprintf("failed to set to: %v", err)}
	}
	if len(msg.CC) > 0 {
		if err := m.Cc(msg.CC...); err != nil {
			return &CustomEmailError{Msg: fmt.Sprintf("failed to set cc: %v", err)}
		}
	}
	if len(msg.BCC) > 0 {
		if err := m.Bcc(msg.BCC...); err != nil {
			return &CustomEmailError{Msg: fmt.Sprintf("failed to set bcc: %v", err)}
		}
	}

	m.Subject(msg.Subject)
	if msg.IsHTML {
		m.SetBodyString(gomail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}

	for _, a := range msg.Attachments {
		m.AttachReader(a.Filename, bytes.NewReader(a.Data))
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return &CustomEmailError{Msg: fmt.Sprintf("failed to create SMTP client: %v", err)}
	}

	if err := client.DialAndSend(m); err != nil {
		return &CustomEmailError{Msg: fmt.Sprintf("failed to send email: %v", err), Temp: true}
	}
	return nil
}

func (s *smtpProvider) name() EmailProvider { return EmailProviderSMTP }
