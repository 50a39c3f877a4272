package delivery

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jaytaylor/html2text"
)

// ReminderSubject is the subject line of every reminder email.
const ReminderSubject = "Tasks due tomorrow"

var reminderHTML = template.Must(template.New("reminder").Parse(`<html>
<body>
<p>The following tasks are due tomorrow:</p>
{{range .}}<p>{{.}}</p>
{{end}}<p>Have a nice day!</p>
</body>
</html>
`))

// ComposeReminder builds the reminder for one recipient, one paragraph per
// description in the given order. Descriptions are HTML-escaped; the plain
// text alternative is derived from the rendered HTML.
func ComposeReminder(email string, descriptions []string) (Message, error) {
	var html bytes.Buffer
	if err := reminderHTML.Execute(&html, descriptions); err != nil {
		return Message{}, fmt.Errorf("failed to render reminder for %s: %w", email, err)
	}

	text, err := html2text.FromString(html.String())
	if err != nil {
		return Message{}, fmt.Errorf("failed to render text reminder for %s: %w", email, err)
	}

	return Message{
		To:      email,
		Subject: ReminderSubject,
		HTML:    html.String(),
		Text:    text,
	}, nil
}
