package ports

import "context"

// MailMessage correo de texto plano.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer define el puerto de salida para el envío de correos (invitaciones, recuperación de contraseña).
// Cualquier adaptador (SMTP, log, mock) debe implementar esta interfaz.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
