package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// PurchaseEmail carries the template data for a purchase confirmation.
type PurchaseEmail struct {
	To           string
	Username     string
	OrderID      string
	ProductTitle string
	Amount       int64 // major currency units
	Currency     string
	InvoicePath  string // optional PDF attachment
	ResetLink    string // optional set-password link for first-time buyers
}

type Sender interface {
	SendPurchaseConfirmation(ctx context.Context, m PurchaseEmail) error
}

type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPSender) SendPurchaseConfirmation(ctx context.Context, m PurchaseEmail) error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)

	e := email.NewEmail()
	e.From = s.from
	e.To = []string{m.To}
	e.Subject = fmt.Sprintf("Payment received - %s", m.ProductTitle)
	e.HTML = []byte(renderBody(m))
	if m.InvoicePath != "" {
		if _, err := e.AttachFile(m.InvoicePath); err != nil {
			return fmt.Errorf("attach invoice: %w", err)
		}
	}
	return e.Send(addr, auth)
}

func renderBody(m PurchaseEmail) string {
	name := m.Username
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for your purchase of <b>%s</b>.</p><p>Order: %s<br>Amount: %s %d</p>",
		name, m.ProductTitle, m.OrderID, m.Currency, m.Amount,
	)
	if m.ResetLink != "" {
		body += fmt.Sprintf(
			"<p>Your account was created with this purchase. <a href=%q>Set your password</a> (the link expires in 15 minutes).</p>",
			m.ResetLink,
		)
	}
	body += "<p>Your invoice is attached.</p>"
	return body
}
