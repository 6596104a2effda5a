package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"agency-portal/internal/forms"
	"agency-portal/internal/models"
)

type field struct {
	Label string
	Value string
}

type submissionView struct {
	Title     string
	Name      string
	Email     string
	Submitted string
	Fields    []field
}

var submissionTmpl = template.Must(template.New("submission").Parse(`<!DOCTYPE html>
<html><body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
<h2 style="margin-bottom: 4px;">{{.Title}}</h2>
<p style="color: #666; margin-top: 0;">Received {{.Submitted}}</p>
{{if .Name}}<p><strong>{{.Name}}</strong>{{if .Email}} &lt;<a href="mailto:{{.Email}}">{{.Email}}</a>&gt;{{end}}</p>{{end}}
<table cellpadding="6" style="border-collapse: collapse;">
{{range .Fields}}<tr><td style="border-bottom: 1px solid #eee; color: #666; vertical-align: top;">{{.Label}}</td><td style="border-bottom: 1px solid #eee;">{{.Value}}</td></tr>
{{end}}</table>
</body></html>`))

var inviteTmpl = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html><body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
<p>You have been invited to join the {{.Agency}} client portal.</p>
<p><a href="{{.Link}}">Accept your invite</a></p>
<p style="color: #666;">This link can be used once and expires in 7 days.</p>
</body></html>`))

func submissionTitle(formType string) string {
	switch formType {
	case forms.TypeHypeAudit:
		return "New hype audit request"
	case forms.TypeQuoteRequest:
		return "New quote request"
	default:
		return "New " + strings.ReplaceAll(formType, "-", " ") + " submission"
	}
}

// RenderSubmission builds the notification email for a form submission.
func RenderSubmission(sub models.FormSubmission) (subject, body string, err error) {
	view := submissionView{
		Title:     submissionTitle(sub.FormType),
		Name:      stringValue(sub.Payload["name"]),
		Email:     stringValue(sub.Payload["email"]),
		Submitted: sub.CreatedAt.Format("Jan 2, 2006 15:04 MST"),
	}

	keys := make([]string, 0, len(sub.Payload))
	for k := range sub.Payload {
		if k == "name" || k == "email" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		view.Fields = append(view.Fields, field{Label: labelFor(k), Value: formatValue(sub.Payload[k])})
	}

	var buf bytes.Buffer
	if err := submissionTmpl.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("failed to render submission email: %w", err)
	}

	subject = view.Title
	if view.Name != "" {
		subject += " from " + view.Name
	}
	return subject, buf.String(), nil
}

func RenderInvite(agency, link string) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := inviteTmpl.Execute(&buf, struct{ Agency, Link string }{agency, link}); err != nil {
		return "", "", fmt.Errorf("failed to render invite email: %w", err)
	}
	return "You're invited to the " + agency + " portal", buf.String(), nil
}

func labelFor(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+formatValue(t[k]))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
