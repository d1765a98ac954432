package mail

import (
	"context"
	"fmt"
	"log"
	"time"

	"natours/internal/model"

	"gopkg.in/gomail.v2"
)

// Client sends transactional email over SMTP
type Client struct {
	dialer *gomail.Dialer
	from   string
}

// NewClient creates a new SMTP mail client
func NewClient(host string, port int, username, password, from string) *Client {
	return &Client{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendWelcome greets a freshly signed-up user
func (c *Client) SendWelcome(ctx context.Context, user *model.User, url string) error {
	subject := "Welcome to the Natours family!"
	body := fmt.Sprintf("Hi %s,\n\nWelcome to Natours, we're glad to have you!\nManage your account here: %s\n", user.Name, url)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to Natours, we're glad to have you!</p><p><a href=%q>Manage your account</a></p>", user.Name, url)
	return c.send(ctx, user.Email, subject, body, html)
}

// SendPasswordReset delivers the one-time reset link. The token inside
// resetURL is only valid for ten minutes.
func (c *Client) SendPasswordReset(ctx context.Context, user *model.User, resetURL string) error {
	subject := "Your password reset token (valid for 10 minutes)"
	body := fmt.Sprintf("Hi %s,\n\nForgot your password? Submit a PATCH request with your new password and passwordConfirm to:\n%s\n\nIf you didn't request this change, you can ignore this email.\n", user.Name, resetURL)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Forgot your password? <a href=%q>Reset it here</a>.</p><p>If you didn't request this change, you can ignore this email.</p>", user.Name, resetURL)
	return c.send(ctx, user.Email, subject, body, html)
}

func (c *Client) send(ctx context.Context, to, subject, body, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", html)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	select {
	case <-ctx.Done():
		log.Printf("Email send to %s cancelled: %v", to, ctx.Err())
		return ctx.Err()
	default:
		if err := c.dialer.DialAndSend(m); err != nil {
			log.Printf("Failed to send email to %s: %v", to, err)
			return err
		}
		return nil
	}
}
