package smtp

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
)

// Templates renders the HTML email bodies. Template files are parsed once
// at construction; a missing or broken template fails startup rather than
// the first password-reset request.
type Templates struct {
	resetPassword *template.Template
}

// ResetPasswordData feeds the reset-password email template.
type ResetPasswordData struct {
	Name string
	Link string
}

func NewTemplates(dir string) (*Templates, error) {
	tpl, err := template.ParseFiles(filepath.Join(dir, "reset_password.html"))
	if err != nil {
		return nil, fmt.Errorf("parse reset password template: %w", err)
	}
	return &Templates{resetPassword: tpl}, nil
}

// ResetPassword renders the reset-password email body.
func (t *Templates) ResetPassword(data ResetPasswordData) (string, error) {
	var b strings.Builder
	if err := t.resetPassword.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render reset password email: %w", err)
	}
	return b.String(), nil
}
