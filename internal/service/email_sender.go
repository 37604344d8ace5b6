package service

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"
)

type EmailSender struct {
	dialer  *mail.Dialer
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(logger *logrus.Logger) *EmailSender {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	enabledStr := os.Getenv("EMAIL_SENDER_ENABLED")
	isInsecureSkipVerifyStr := os.Getenv("INSECURE_SKIP_VERIFY")

	enabled := enabledStr == "true"

	// При выключенной отправке параметры SMTP не обязательны
	smtpPort := 0
	if enabled {
		port, err := strconv.Atoi(smtpPortStr)
		if err != nil {
			logger.Fatalf("Ошибка преобразования SMTP_PORT: %v", err)
		}
		smtpPort = port
	}

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: isInsecureSkipVerifyStr == "true",
	}

	return &EmailSender{
		dialer:  d,
		logger:  logger,
		enabled: enabled,
	}
}

// SendBudgetAlertNotification отправляет уведомление о пересечении порога бюджета
func (es *EmailSender) SendBudgetAlertNotification(email, message string, threshold float64) error {
	if !es.enabled {
		es.logger.Debug("Отправка уведомлений отключена")
		return nil
	}

	subject := fmt.Sprintf("Уведомление о бюджете (порог %.0f%%)", threshold)
	content := fmt.Sprintf(`
		<h1>Уведомление о бюджете</h1>
		<p>%s</p>
		<p>Дата: <strong>%s</strong></p>
		<small>Это автоматическое уведомление, пожалуйста, не отвечайте на него</small>
	`, message, time.Now().Format("02.01.2006 15:04"))

	return es.sendEmail(email, subject, content)
}

// SendGenerationFailureNotification сообщает о шаблонах, которые не удалось обработать
func (es *EmailSender) SendGenerationFailureNotification(email string, failed int) error {
	if !es.enabled {
		es.logger.Debug("Отправка уведомлений отключена")
		return nil
	}

	subject := "Ошибки генерации повторяющихся операций"
	content := fmt.Sprintf(`
		<h1>Ошибки генерации</h1>
		<p>Не удалось обработать шаблонов: <strong>%d</strong></p>
		<p>Дата: <strong>%s</strong></p>
		<small>Это автоматическое уведомление, пожалуйста, не отвечайте на него</small>
	`, failed, time.Now().Format("02.01.2006 15:04"))

	return es.sendEmail(email, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Ошибка отправки email")
		return fmt.Errorf("не удалось отправить email: %w", err)
	}

	es.logger.Infof("Email успешно отправлен на %s", to)
	return nil
}
