// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/licensestack/ls-backend/internal/config"
	"github.com/licensestack/ls-backend/internal/models"
)

type NotificationService struct {
	config *config.Config
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

var licenseIssuedTemplate = template.Must(template.New("license_issued").Parse(`
<h2>Your {{.SoftwareName}} license</h2>
<p>Hello {{.BuyerName}},</p>
<p>A license for <strong>{{.SoftwareName}} v{{.SoftwareVersion}}</strong> has been issued to you.</p>
<p>Your license key:</p>
<p style="font-family: monospace; font-size: 18px;">{{.LicenseKey}}</p>
<p>Keep this key safe. You will need it to activate the software.</p>
`))

// SendLicenseIssuedEmail delivers the key to the buyer. Best effort: a
// delivery failure is logged and never fails the issuance that triggered
// it.
func (s *NotificationService) SendLicenseIssuedEmail(license *models.License) {
	if !s.config.Email.Enabled {
		return
	}

	data := map[string]interface{}{
		"BuyerName":       license.BuyerName,
		"LicenseKey":      license.LicenseKey,
		"SoftwareName":    license.Software.Name,
		"SoftwareVersion": license.Software.Version,
	}

	var body bytes.Buffer
	if err := licenseIssuedTemplate.Execute(&body, data); err != nil {
		logrus.WithError(err).Error("Failed to render license email template")
		return
	}

	subject := fmt.Sprintf("Your %s license key", license.Software.Name)
	if err := s.sendEmail(license.BuyerEmail, subject, body.String()); err != nil {
		logrus.WithError(err).WithField("buyer_email", license.BuyerEmail).
			Error("Failed to send license email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	cfg := s.config.Email
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		cfg.FromName, cfg.FromEmail, to, subject, body))

	addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
	return smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, msg)
}
