package smtp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplates_MissingDir(t *testing.T) {
	_, err := NewTemplates(t.TempDir())
	assert.Error(t, err)
}

func TestResetPassword_RendersNameAndLink(t *testing.T) {
	dir := t.TempDir()
	tpl := `<p>Hi {{.Name}},</p><a href="{{.Link}}">Reset</a>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reset_password.html"), []byte(tpl), 0o600))

	tpls, err := NewTemplates(dir)
	require.NoError(t, err)

	html, err := tpls.ResetPassword(ResetPasswordData{
		Name: "Alice",
		Link: "http://localhost:3000/api/auth/reset-password/tok123",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hi Alice,")
	assert.Contains(t, html, "reset-password/tok123")
}
