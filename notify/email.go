// Package notify reports pipeline outcomes.
package notify

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	SuccessSubject = "Upload de Cotações - Sucesso"
	SuccessBody    = "O arquivo de cotações foi enviado com sucesso para o Google Drive."
	FailureSubject = "Erro no Script de Cotações - ALTA PRIORIDADE"
	failurePrefix  = "Ocorreu um erro durante a execução do script de cotações. Log do erro:\n\n"
)

type (
	// Sender delivers messages, usually a *mail.Client.
	Sender interface {
		DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
	}

	// SMTPConfig holds the submission server settings.
	SMTPConfig struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	// EmailNotifier mails the run outcome. Send errors are logged, never returned.
	EmailNotifier struct {
		sender Sender
		from   string
		to     []string
	}

	// Noop discards notifications.
	Noop struct{}
)

// NewSMTPClient connects with mandatory STARTTLS and PLAIN authentication.
func NewSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, eris.Wrap(err, "notify: smtp client")
	}

	return client, nil
}

// NewEmailNotifier sends from from to the comma separated addresses in to.
func NewEmailNotifier(sender Sender, from, to string) *EmailNotifier {
	recipients := make([]string, 0)
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}

	return &EmailNotifier{sender: sender, from: from, to: recipients}
}

func (e *EmailNotifier) NotifySuccess(ctx context.Context) {
	e.send(ctx, SuccessSubject, SuccessBody, false)
}

func (e *EmailNotifier) NotifyFailure(ctx context.Context, cause error) {
	e.send(ctx, FailureSubject, FailureBody(cause), true)
}

// FailureBody embeds the error text in the failure template.
func FailureBody(cause error) string {
	text := "<nil>"
	if cause != nil {
		text = cause.Error()
	}

	return failurePrefix + text
}

// Message builds an email. High priority messages carry X-Priority 1.
func (e *EmailNotifier) Message(subject, body string, highPriority bool) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(e.from); err != nil {
		return nil, eris.Wrapf(err, "notify: from %q", e.from)
	}

	if err := msg.To(e.to...); err != nil {
		return nil, eris.Wrapf(err, "notify: to %v", e.to)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if highPriority {
		msg.SetImportance(mail.ImportanceHigh)
	}

	return msg, nil
}

func (e *EmailNotifier) send(ctx context.Context, subject, body string, highPriority bool) {
	msg, err := e.Message(subject, body, highPriority)
	if err != nil {
		zap.L().Error("email not sent", zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := e.sender.DialAndSendWithContext(ctx, msg); err != nil {
		zap.L().Error("email not sent", zap.String("subject", subject), zap.Error(err))
		return
	}

	zap.L().Info("email sent", zap.String("subject", subject), zap.Strings("to", e.to))
}

func (Noop) NotifySuccess(context.Context) {}

func (Noop) NotifyFailure(context.Context, error) {}
