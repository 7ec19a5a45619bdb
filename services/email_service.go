package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"shop-backend/models"

	"gopkg.in/gomail.v2"
)

// EmailService sends order notifications over SMTP. It implements
// OrderNotifier; delivery failures are logged and never affect order state.
type EmailService struct {
	dialer *gomail.Dialer
}

func NewEmailService() (*EmailService, error) {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	if smtpHost == "" || smtpUser == "" || smtpPass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		port = 587
	}

	return &EmailService{dialer: gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)}, nil
}

func (s *EmailService) NotifyOrderCreated(order *models.Order, email string) {
	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s", order.OrderNumber))

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
        <h2 style="color: #333;">Order Confirmation</h2>
        <p>Thank you for your order!</p>
        <div style="background-color: #f0fdf4; padding: 20px; margin: 20px 0; border-radius: 8px;">
            <p><strong>Order Number:</strong> %s</p>
            <p><strong>Total Amount:</strong> BDT %s</p>
        </div>
        <p>Your order has been received and is being processed. We'll notify you when it ships.</p>
        <div style="text-align: center; margin-top: 30px; color: #666; font-size: 12px;">
            <p>This is an automated email. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
	`, order.OrderNumber, order.Total.StringFixed(2))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("failed to send order confirmation for %s: %v", order.OrderNumber, err)
	}
}

// LogNotifier is the fallback when SMTP is not configured.
type LogNotifier struct{}

func (LogNotifier) NotifyOrderCreated(order *models.Order, email string) {
	log.Printf("order %s created for %s, total BDT %s", order.OrderNumber, email, order.Total.StringFixed(2))
}
