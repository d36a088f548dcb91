package mail

import (
	"bytes"
	"html/template"
)

var verifyTmpl = template.Must(template.New("verify").Parse(
	`<p>Please confirm your email</p> <a href="{{.Link}}" target="_blank">Confirm</a>`))

// Verification builds the confirm-your-email message. The link embeds the
// user's verification token and points back at the verify endpoint.
func Verification(to, baseURL, token string) (Mail, error) {
	link := baseURL + "/api/users/verify/" + token

	var buf bytes.Buffer
	if err := verifyTmpl.Execute(&buf, map[string]string{"Link": link}); err != nil {
		return Mail{}, err
	}
	return Mail{To: to, Subject: "Verify email", HTML: buf.String()}, nil
}
