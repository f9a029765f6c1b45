package models

import "time"

// Ticket lifecycle defaults.
const (
	DefaultTicketStatus  = "pending"
	DefaultSeverityLevel = "low"
	DefaultEmailOption   = "auto"
	TicketStatusClosed   = "closed"
	TicketStatusResolved = "resolved"
)

// Ticket represents a complaint stored in the tickets table.
type Ticket struct {
	ID               string          `db:"id"`
	Title            string          `db:"title"`
	Type             ComplainantType `db:"type"`
	Category         string          `db:"category"`
	Content          string          `db:"content"`
	Suggestion       *string         `db:"suggestion"`
	ComplainantEmail *string         `db:"complainant_email"`
	DateSubmitted    time.Time       `db:"date_submitted"`
	SubmittedYear    int             `db:"submitted_year"`
	SubmittedMonth   int             `db:"submitted_month"`
	SubmittedWeek    int             `db:"submitted_week"`
	SubmittedDay     int             `db:"submitted_day"`
	DateClosed       *time.Time      `db:"date_closed"`
	ClosedYear       *int            `db:"closed_year"`
	ClosedMonth      *int            `db:"closed_month"`
	ClosedWeek       *int            `db:"closed_week"`
	ClosedDay        *int            `db:"closed_day"`
	Status           string          `db:"status"`
	FeedbackRate     *int            `db:"feedback_rate"`
	AssignedEmail    *string         `db:"assigned_email"`
	SeverityLevel    string          `db:"severity_level"`
	ReportName       *string         `db:"report_name"`
	ReportFileType   *string         `db:"report_file_type"`
	ReportPath       *string         `db:"report_path"`
	ReportSize       *int64          `db:"report_size"`
	EmailOptionType  string          `db:"email_option_type"`
	EmailOptionData  *string         `db:"email_option_data"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// DateParts is the decomposed timestamp shape the dashboard consumes.
// Month is 0-based and day is the weekday, matching the stored data the
// portal frontend was built against.
type DateParts struct {
	Value time.Time `json:"value"`
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Week  int       `json:"week"`
	Day   int       `json:"day"`
}

// Report describes an uploaded attachment.
type Report struct {
	Name     string `json:"name"`
	FileType string `json:"fileType"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// EmailOption carries the notification preference for a ticket.
type EmailOption struct {
	Type string  `json:"type"`
	Data *string `json:"data,omitempty"`
}

// TicketView is the public projection of a ticket.
type TicketView struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Type             ComplainantType `json:"type"`
	Category         string          `json:"category"`
	Content          string          `json:"content"`
	Suggestion       *string         `json:"suggestion,omitempty"`
	ComplainantEmail *string         `json:"complainantEmail,omitempty"`
	DateSubmitted    DateParts       `json:"dateSubmitted"`
	DateClosed       *DateParts      `json:"dateClosed,omitempty"`
	Status           string          `json:"status"`
	FeedbackRate     *int            `json:"feedbackRate,omitempty"`
	AssignedEmail    *string         `json:"assignedEmail,omitempty"`
	SeverityLevel    string          `json:"severityLevel"`
	Report           *Report         `json:"report,omitempty"`
	EmailOption      EmailOption     `json:"emailOption"`
}

// Transform projects the ticket onto its public field whitelist.
func (t *Ticket) Transform() TicketView {
	view := TicketView{
		ID:               t.ID,
		Title:            t.Title,
		Type:             t.Type,
		Category:         t.Category,
		Content:          t.Content,
		Suggestion:       t.Suggestion,
		ComplainantEmail: t.ComplainantEmail,
		DateSubmitted: DateParts{
			Value: t.DateSubmitted,
			Year:  t.SubmittedYear,
			Month: t.SubmittedMonth,
			Week:  t.SubmittedWeek,
			Day:   t.SubmittedDay,
		},
		Status:        t.Status,
		FeedbackRate:  t.FeedbackRate,
		AssignedEmail: t.AssignedEmail,
		SeverityLevel: t.SeverityLevel,
		EmailOption:   EmailOption{Type: t.EmailOptionType, Data: t.EmailOptionData},
	}

	if t.DateClosed != nil && t.ClosedYear != nil && t.ClosedMonth != nil && t.ClosedWeek != nil && t.ClosedDay != nil {
		view.DateClosed = &DateParts{
			Value: *t.DateClosed,
			Year:  *t.ClosedYear,
			Month: *t.ClosedMonth,
			Week:  *t.ClosedWeek,
			Day:   *t.ClosedDay,
		}
	}

	if t.ReportName != nil && t.ReportFileType != nil && t.ReportPath != nil && t.ReportSize != nil {
		view.Report = &Report{
			Name:     *t.ReportName,
			FileType: *t.ReportFileType,
			Path:     *t.ReportPath,
			Size:     *t.ReportSize,
		}
	}

	return view
}

// SetSubmitted stamps the submission timestamp and its decomposition.
func (t *Ticket) SetSubmitted(ts time.Time) {
	t.DateSubmitted = ts
	t.SubmittedYear, t.SubmittedMonth, t.SubmittedWeek, t.SubmittedDay = DecomposeDate(ts)
}

// SetClosed stamps the closure timestamp and its decomposition.
func (t *Ticket) SetClosed(ts time.Time) {
	year, month, week, day := DecomposeDate(ts)
	t.DateClosed = &ts
	t.ClosedYear = &year
	t.ClosedMonth = &month
	t.ClosedWeek = &week
	t.ClosedDay = &day
}

// DecomposeDate splits a timestamp into year, 0-based month, week of month
// (0-4) and weekday (0=Sunday).
func DecomposeDate(ts time.Time) (year, month, week, day int) {
	year = ts.Year()
	month = int(ts.Month()) - 1
	week = weekOfMonth(ts)
	day = int(ts.Weekday())
	return
}

func weekOfMonth(ts time.Time) int {
	first := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
	offset := ts.Day() + int(first.Weekday()) - 1
	return offset / 7
}

// TicketFilter captures the equality filters accepted by the list endpoint.
type TicketFilter struct {
	Title            string
	ComplainantEmail string
	Category         string
	Page             int
	PerPage          int
}
