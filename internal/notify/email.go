package notify

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Environment variables consulted for SMTP settings left unset in EmailConfig.
const (
	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM_EMAIL"
	EnvSMTPTo       = "SMTP_TO_EMAILS"
)

const defaultSMTPPort = 587

// EmailConfig holds SMTP settings for the email service. The zero value is
// valid; unset fields are resolved from the environment at send time.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
}

// Email sends notifications over SMTP with STARTTLS.
type Email struct {
	cfg    EmailConfig
	logger zerolog.Logger
}

// NewEmail creates a new Email service.
func NewEmail(cfg EmailConfig, logger *zerolog.Logger) *Email {
	return &Email{
		cfg:    cfg,
		logger: logger.With().Str("component", "email_service").Logger(),
	}
}

func (e *Email) Name() string { return "email" }

// Send implements the Service interface for email. Each call opens one scoped
// SMTP connection: DialAndSend connects, upgrades to TLS, authenticates,
// sends, and releases the connection on every exit path.
func (e *Email) Send(_ context.Context, message string) error {
	cfg, err := e.resolved()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", cfg.To...)
	m.SetHeader("Subject", cfg.Subject)
	m.SetBody("text/plain", message)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return &DeliveryError{Service: e.Name(), Err: err}
	}

	e.logger.Info().Strs("recipients", cfg.To).Msg("email notification delivered")
	return nil
}

// resolved fills unset fields from the environment and reports what is still
// missing as a *ConfigError.
func (e *Email) resolved() (EmailConfig, error) {
	cfg := e.cfg
	if cfg.Host == "" {
		cfg.Host = os.Getenv(EnvSMTPServer)
	}
	if cfg.Port == 0 {
		if v := os.Getenv(EnvSMTPPort); v != "" {
			if p, err := strconv.Atoi(v); err == nil {
				cfg.Port = p
			}
		}
	}
	if cfg.Port == 0 {
		cfg.Port = defaultSMTPPort
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv(EnvSMTPUsername)
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv(EnvSMTPPassword)
	}
	if cfg.From == "" {
		cfg.From = os.Getenv(EnvSMTPFrom)
	}
	if len(cfg.To) == 0 {
		cfg.To = splitRecipients(os.Getenv(EnvSMTPTo))
	}
	if cfg.Subject == "" {
		cfg.Subject = "smle training notification"
	}

	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "server")
	}
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if cfg.From == "" {
		missing = append(missing, "from address")
	}
	if len(cfg.To) == 0 {
		missing = append(missing, "recipients")
	}
	if len(missing) > 0 {
		return EmailConfig{}, &ConfigError{Service: "email", Reason: "missing " + strings.Join(missing, ", ")}
	}
	return cfg, nil
}

func splitRecipients(raw string) []string {
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
