// Package mailer sends the transactional mail students receive.
package mailer

import (
	"context"
	"fmt"
	"html"

	"educa/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers an enrollment confirmation.
type Mailer interface {
	SendEnrollment(ctx context.Context, toName, toEmail, courseTitle string) error
}

// Message is a rendered email.
type Message struct {
	Subject string
	Plain   string
	HTML    string
}

// EnrollmentMessage renders the confirmation sent after joining a course.
func EnrollmentMessage(studentName, courseTitle string) Message {
	subject := fmt.Sprintf("You are enrolled in %s", courseTitle)
	plain := fmt.Sprintf("Hi %s,\n\nYou are now enrolled in %s. Your modules are waiting for you.\n", studentName, courseTitle)
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
					<h2 style="color: #333333; text-align: center;">Welcome aboard</h2>
					<p style="font-size: 16px; color: #555555;">Hi %s,</p>
					<p style="font-size: 16px; color: #555555;">You are now enrolled in <strong>%s</strong>.</p>
				</div>
			</body>
		</html>
	`, html.EscapeString(studentName), html.EscapeString(courseTitle))
	return Message{Subject: subject, Plain: plain, HTML: body}
}

// SendgridMailer sends through the SendGrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgrid(apiKey, sender string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Educa", sender),
	}
}

func (m *SendgridMailer) SendEnrollment(ctx context.Context, toName, toEmail, courseTitle string) error {
	msg := EnrollmentMessage(toName, courseTitle)
	email := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail(toName, toEmail), msg.Plain, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs; it is used when no SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) SendEnrollment(ctx context.Context, toName, toEmail, courseTitle string) error {
	logger.Log.Info("Enrollment mail skipped, no mail provider configured", "to", toEmail, "course", courseTitle)
	return nil
}
