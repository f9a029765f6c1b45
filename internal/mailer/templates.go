package mailer

import (
	"fmt"
	"html"
)

// categoryLabels maps complaint category codes to the labels shown in the
// confirmation email.
var categoryLabels = map[string]string{
	"Stu1":  "Experience-related matters",
	"Stu2":  "Arrangements for teaching/assessments",
	"Stu3":  "Student Village matters (non-tenancy)",
	"Stu4":  "International student matters",
	"Sta1":  "Code of Ethics and Code of Conduct",
	"Sta2":  "Violence, aggression and bullying in the workplace",
	"Sta3":  "Unlawful discrimination and harassment",
	"Sta4":  "Personal relationships between staff members",
	"Sta5":  "Responsible conduct of research",
	"Sta6":  "General grievances",
	"Sta7":  "Dispute settlement",
	"Sta8":  "Equal opportunity grievance management",
	"Sta9":  "Resolving workplace health and safety issues",
	"Sta10": "Research misconduct",
}

// CategoryLabel resolves a category code to its human-readable label,
// falling back to the raw code for unknown categories.
func CategoryLabel(code string) string {
	if label, ok := categoryLabels[code]; ok {
		return label
	}
	return code
}

func ticketConfirmationBody(msg TicketConfirmation) string {
	return fmt.Sprintf(
		`Dear %s,<br/><p>Thank you for your submission. Your complaint will be acknowledged and dealt with as quickly as possible.<br/> At the University, the complaint handling process is based on the principles of effective complaints handling, and the International Standard on <b>Complaints Handling ISO:10002.</b></p><br/><p>Your ticket details are as follows:</p><ul><li>Ticket ID: %s </li><li>Title: %s</li><li>Category: %s </li><li>Content: %s</li><li>Severity level: %s </li><li>Suggestion: %s</li></ul><p>Please reply to this email should you need more information.<br/><br/>Thanks,<br/><b>The Murdoch Complaint Support Team</b></p>`,
		html.EscapeString(msg.FirstName),
		html.EscapeString(msg.TicketID),
		html.EscapeString(msg.Title),
		html.EscapeString(CategoryLabel(msg.Category)),
		html.EscapeString(msg.Content),
		html.EscapeString(msg.SeverityLevel),
		html.EscapeString(msg.Suggestion),
	)
}

func loginCodeBody(msg LoginCode) string {
	return fmt.Sprintf(
		`Dear User,<br/><br/><p>Your Complaint Portal Verification Code is: <b>%s</b><br/><br/>Thanks,<br/><b>The Murdoch Complaint Support Team</b></p>`,
		html.EscapeString(msg.Code),
	)
}
