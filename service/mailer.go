package service

import (
	"context"

	"bitwise74/vidshare/apperr"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// GomailSender delivers notifications over SMTP.
type GomailSender struct{}

func (GomailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	from := viper.GetString("notify.from")
	if to == from {
		return apperr.New(apperr.PermanentDelivery, apperr.CodeValidationFailed, "recipient equals sender address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		viper.GetString("notify.smtp_host"),
		viper.GetInt("notify.smtp_port"),
		from,
		viper.GetString("notify.smtp_password"),
	)

	// gomail has no context support, the dispatcher's deadline bounds us
	// from the outside instead
	if err := d.DialAndSend(m); err != nil {
		return apperr.Wrap(apperr.TransientDelivery, apperr.CodeStoreUnavailable, "failed to deliver mail", err)
	}

	return nil
}

var _ Mailer = GomailSender{}
