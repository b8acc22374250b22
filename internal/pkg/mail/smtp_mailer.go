package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/CamiloVelandia/MesaFacil/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendActivationMail sends the account activation email
func SendActivationMail(to string, name string, activationLink string) error {
	subject := "Activa tu cuenta de MesaFácil"
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Gracias por registrarte en MesaFácil. Activa tu cuenta con el siguiente enlace:</p>"+
			"<p><a href=\"%s\">Activar cuenta</a></p>"+
			"<p>Si no creaste esta cuenta, ignora este correo.</p>",
		name, activationLink,
	)
	return SendMail(to, subject, body)
}

// SendCheckoutConfirmationMail notifies the user that their payment claim
// was received and is pending verification
func SendCheckoutConfirmationMail(to string, name string, planName string, reference string) error {
	subject := "Recibimos tu confirmación de pago"
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Registramos tu confirmación de pago para el plan <strong>%s</strong>.</p>"+
			"<p>Referencia: <strong>%s</strong></p>"+
			"<p>Tu suscripción quedará activa en cuanto verifiquemos el pago.</p>",
		name, planName, reference,
	)
	return SendMail(to, subject, body)
}
