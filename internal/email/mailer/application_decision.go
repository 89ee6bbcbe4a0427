// internal/email/mailer/application_decision.go
package mailer

import "github.com/jiyadkamal/bike/internal/email"

// DecisionTemplateData contains data for the application decision template
type DecisionTemplateData struct {
	Name     string
	Approved bool
	LoginURL string
}

// SendApplicationDecision notifies an applicant that their account was
// approved or rejected.
func SendApplicationDecision(s *email.Service, to, name string, approved bool) error {
	templateData := DecisionTemplateData{
		Name:     name,
		Approved: approved,
		LoginURL: s.BaseURL() + "/login",
	}

	subject := "Your application has been approved"
	if !approved {
		subject = "An update on your application"
	}

	emailData := email.EmailData{
		To:           to,
		FromName:     "BikerOS",
		Subject:      subject,
		TemplateName: "application_decision",
		TemplateData: templateData,
	}

	return s.SendEmail(emailData)
}
