package mailer

// EmailJob is the queue payload consumed by the email worker. Either set
// Subject/Text/HTML directly, or set Template to have the worker render
// subject and body from a named template.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
