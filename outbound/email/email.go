package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/spf13/viper"
)

type EmailOutbound struct {
	from string
	addr string
	auth smtp.Auth

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailOutbound(cfg *viper.Viper) *EmailOutbound {
	return &EmailOutbound{
		from:     cfg.GetString("email.user"),
		addr:     fmt.Sprintf("%s:%d", cfg.GetString("email.host"), cfg.GetInt("email.port")),
		auth:     smtp.CRAMMD5Auth(cfg.GetString("email.user"), cfg.GetString("email.password")),
		sendMail: smtp.SendMail,
	}
}

func (out *EmailOutbound) Send(to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		out.from,
		strings.Join(to, ","),
		subject,
		body,
	))

	if err := out.sendMail(out.addr, out.auth, out.from, to, message); err != nil {
		return fmt.Errorf("email: send to %s: %w", strings.Join(to, ","), err)
	}

	return nil
}
