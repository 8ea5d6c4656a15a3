package mail

import (
	"fmt"
	"html"
	"net/url"
	"time"
)

// Composer renders the platform's messages with links into the frontend.
type Composer struct {
	appName     string
	frontendURL string
}

func NewComposer(appName, frontendURL string) *Composer {
	return &Composer{appName: appName, frontendURL: frontendURL}
}

// Invite carries the registration link for an invite code.
func (c *Composer) Invite(email, code string, expiresAt *time.Time) Message {
	link := c.frontendURL + "/register?invite=" + url.QueryEscape(code)
	text := fmt.Sprintf("You have been invited to join %s.\n\nRegister here: %s\n", c.appName, link)
	if expiresAt != nil {
		text += fmt.Sprintf("The invite expires on %s.\n", expiresAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return Message{
		To:      []Address{{Email: email}},
		Subject: "Your invitation",
		Text:    text,
		HTML: fmt.Sprintf(`<p>You have been invited to join %s.</p><p><a href="%s">Create your account</a></p>`,
			html.EscapeString(c.appName), html.EscapeString(link)),
	}
}

// NewRegistration tells admins a registration is waiting for approval.
func (c *Composer) NewRegistration(adminEmails []string, name, email string) Message {
	to := make([]Address, 0, len(adminEmails))
	for _, e := range adminEmails {
		to = append(to, Address{Email: e})
	}
	link := c.frontendURL + "/admin/users?status=pending"
	return Message{
		To:      to,
		Subject: "New registration awaiting approval",
		Text:    fmt.Sprintf("%s <%s> registered and is waiting for approval.\n\nReview: %s\n", name, email, link),
		HTML: fmt.Sprintf(`<p>%s &lt;%s&gt; registered and is waiting for approval.</p><p><a href="%s">Review</a></p>`,
			html.EscapeString(name), html.EscapeString(email), html.EscapeString(link)),
	}
}

// Approved tells a user their account is active.
func (c *Composer) Approved(name, email string) Message {
	link := c.frontendURL + "/login"
	return Message{
		To:      []Address{{Name: name, Email: email}},
		Subject: "Your account has been approved",
		Text:    fmt.Sprintf("Hi %s,\n\nYour %s account is active. Sign in: %s\n", name, c.appName, link),
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>Your %s account is active. <a href="%s">Sign in</a></p>`,
			html.EscapeString(name), html.EscapeString(c.appName), html.EscapeString(link)),
	}
}
