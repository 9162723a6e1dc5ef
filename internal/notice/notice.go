// Package notice renders the success/error banner shown above every page.
package notice

import (
	"html/template"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Render returns the banner markup for message, or nothing when the message
// is empty. Unknown kinds get the neutral treatment.
func Render(message string, kind Kind) template.HTML {
	if message == "" {
		return ""
	}
	class := "notice notice-neutral"
	switch kind {
	case Success:
		class = "notice notice-success"
	case Error:
		class = "notice notice-error"
	}
	return template.HTML(`<div class="` + class + `" role="status">` + template.HTMLEscapeString(message) + `</div>`)
}
