package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendResetToken(toEmail, token string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, clientURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendResetToken(toEmail, token string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Réinitialisation de votre mot de passe")

	resetLink := fmt.Sprintf("%s/reinitialiser-mot-de-passe?token=%s", s.clientURL, token)

	body := fmt.Sprintf(`
		<div style="font-family: Georgia, serif; padding: 20px; color: #333;">
			<h2>Réinitialisation du mot de passe</h2>
			<p>Vous avez demandé à réinitialiser votre mot de passe. Cliquez sur le bouton ci-dessous pour continuer :</p>
			<a href="%s" style="background-color: #7A5C3E; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Réinitialiser mon mot de passe</a>
			<p>Ou copiez ce lien :</p>
			<p>%s</p>
			<p>Ce lien expire dans une heure.</p>
			<p>Si vous n'êtes pas à l'origine de cette demande, vous pouvez ignorer ce message.</p>
		</div>
	`, resetLink, resetLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}
