package account

import (
	"net/url"
	"strings"

	"github.com/BruksfildServices01/storefront/internal/auth"
	"github.com/BruksfildServices01/storefront/internal/mail"
	"github.com/BruksfildServices01/storefront/internal/models"
)

type MailQueue interface {
	Dispatch(msg mail.Message)
}

// Verification mails signed email verification links.
type Verification struct {
	tokens *auth.Tokens
	mail   MailQueue
	appURL string
}

func NewVerification(tokens *auth.Tokens, mail MailQueue, appURL string) *Verification {
	return &Verification{tokens: tokens, mail: mail, appURL: strings.TrimRight(appURL, "/")}
}

func (v *Verification) Send(u *models.User) error {
	token, err := v.tokens.IssueVerification(u)
	if err != nil {
		return err
	}

	link := v.appURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	v.mail.Dispatch(mail.VerifyEmail(u.Email, u.Name, link))
	return nil
}
