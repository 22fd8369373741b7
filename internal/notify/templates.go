package notify

import (
	"strings"
	"text/template"

	"github.com/hireai/scheduling-service/internal/schedparse"
)

var slotsProposedTmpl = template.Must(template.New("slots_proposed").Parse(`Hi {{.StudentName}},

{{.ProposerName}} has proposed the following {{if .JobTitle}}interview times for the {{.JobTitle}} position{{else}}times for a coffee chat{{end}}:

{{range .SlotLines}}  - {{.}}
{{end}}
Please pick the time that works for you:

{{.ConfirmURL}}

This link is valid for 7 days. If none of these times work, reply to {{.ProposerName}} directly.

— HireAI
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`Hi {{.Recipient}},

Your {{if .JobTitle}}interview for the {{.JobTitle}} position{{else}}coffee chat{{end}} with {{.Other}} is confirmed for:

  {{.SlotLine}}

— HireAI
`))

func renderSlotsProposed(msg SlotsProposed) (string, error) {
	lines := make([]string, 0, len(msg.Slots))
	for _, s := range msg.Slots {
		lines = append(lines, schedparse.DisplaySlot(s))
	}

	var b strings.Builder
	err := slotsProposedTmpl.Execute(&b, struct {
		StudentName  string
		ProposerName string
		JobTitle     string
		SlotLines    []string
		ConfirmURL   string
	}{
		StudentName:  msg.StudentName,
		ProposerName: msg.ProposerName,
		JobTitle:     msg.JobTitle,
		SlotLines:    lines,
		ConfirmURL:   msg.ConfirmURL,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderConfirmation(msg Confirmation, recipient, other string) (string, error) {
	var b strings.Builder
	err := confirmationTmpl.Execute(&b, struct {
		Recipient string
		Other     string
		JobTitle  string
		SlotLine  string
	}{
		Recipient: recipient,
		Other:     other,
		JobTitle:  msg.JobTitle,
		SlotLine:  schedparse.DisplaySlot(msg.Slot),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
