// Package notify sends templated candidate emails over SMTP. Delivery is
// best-effort: callers log failures and never roll back state transitions
// because of them.
package notify

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
	FromAddr string
}

type Dispatcher struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewDispatcher(cfg SMTPConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, logger: logger}
}

type ShortlistEmail struct {
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	InterviewURL   string
	CompanyName    string
}

type RejectionEmail struct {
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	CompanyName    string
}

func (d *Dispatcher) SendShortlist(email ShortlistEmail) error {
	subject := fmt.Sprintf("You've been shortlisted for %s at %s", email.JobTitle, email.CompanyName)
	text := fmt.Sprintf(`Dear %s,

Congratulations! Your application for the %s position at %s has been shortlisted.

Next steps: please complete our interview by visiting:
%s

Please complete the interview within the next 7 days.

Best regards,
%s Recruitment Team`,
		email.CandidateName, email.JobTitle, email.CompanyName, email.InterviewURL, email.CompanyName)

	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Congratulations! Your application for the <strong>%s</strong> position at <strong>%s</strong> has been shortlisted.</p>
<p><strong>Next steps:</strong> please complete our interview:</p>
<p><a href="%s">%s</a></p>
<p>Please complete the interview within the next 7 days.</p>
<p>Best regards,<br/><strong>%s Recruitment Team</strong></p>`,
		email.CandidateName, email.JobTitle, email.CompanyName, email.InterviewURL, email.InterviewURL, email.CompanyName)

	return d.send(email.CandidateEmail, subject, text, html)
}

func (d *Dispatcher) SendRejection(email RejectionEmail) error {
	subject := fmt.Sprintf("Update on your application for %s at %s", email.JobTitle, email.CompanyName)
	text := fmt.Sprintf(`Dear %s,

Thank you for your interest in the %s position at %s.

After careful consideration, we regret to inform you that we have decided not to move forward with your application at this time.

We encourage you to apply for other opportunities with us in the future.

Best regards,
%s Recruitment Team`,
		email.CandidateName, email.JobTitle, email.CompanyName, email.CompanyName)

	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>Thank you for your interest in the <strong>%s</strong> position at <strong>%s</strong>.</p>
<p>After careful consideration, we regret to inform you that we have decided not to move forward with your application at this time.</p>
<p>We encourage you to apply for other opportunities with us in the future.</p>
<p>Best regards,<br/><strong>%s Recruitment Team</strong></p>`,
		email.CandidateName, email.JobTitle, email.CompanyName, email.CompanyName)

	return d.send(email.CandidateEmail, subject, text, html)
}

func (d *Dispatcher) send(to, subject, text, html string) error {
	if d.cfg.User == "" || d.cfg.Password == "" {
		d.logger.Warn("smtp credentials not configured, email skipped", zap.String("to", to))
		return errors.New("smtp not configured")
	}

	from := d.cfg.FromAddr
	if from == "" {
		from = d.cfg.User
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, d.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	dialer := gomail.NewDialer(d.cfg.Host, d.cfg.Port, d.cfg.User, d.cfg.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	d.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
