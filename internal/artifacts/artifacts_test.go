package artifacts

import (
	"bytes"
	"errors"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/ui-smoke/internal/testutil"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"create-client", "create-client"},
		{"Obrigações", "obrigacoes"},
		{"Análises", "analises"},
		{"Nav / Agenda", "nav_agenda"},
		{"  spaced  out  ", "spaced_out"},
		{"v1.2", "v1.2"},
		{"../../etc/passwd", "etc_passwd"},
		{"///", "scenario"},
		{"", "scenario"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Slug(tc.in))
		})
	}
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "nav_agenda.png", Expand("", "Nav Agenda"))
	assert.Equal(t, "shots/calendar_final.png", Expand("shots/{id}_final.png", "calendar"))
	assert.Equal(t, "clients_verification.png", Expand("clients_verification.png", "create-client"))
}

func TestWriter(t *testing.T) {
	t.Run("capture writes below the root", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		w := NewWriter(fs, "verification", nil)
		page := testutil.NewFakePage()

		path, err := w.Capture(page, "calendar_verification.png")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("verification", "calendar_verification.png"), path)

		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, testutil.FakeScreenshot, data)
	})

	t.Run("absolute names are kept", func(t *testing.T) {
		w := NewWriter(afero.NewMemMapFs(), "verification", nil)
		abs := filepath.Join(string(filepath.Separator), "tmp", "x.png")
		assert.Equal(t, abs, w.Path(abs))
	})

	t.Run("disabled writer does nothing", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		w := NewWriter(fs, "verification", nil)
		w.Disable()
		path, err := w.Capture(testutil.NewFakePage(), "x.png")
		require.NoError(t, err)
		assert.Empty(t, path)
		exists, _ := afero.DirExists(fs, "verification")
		assert.False(t, exists)
	})

	t.Run("screenshot failure is a diagnostic error", func(t *testing.T) {
		page := testutil.NewFakePage()
		page.ScreenshotErr = errors.New("page crashed")
		_, err := NewWriter(afero.NewMemMapFs(), "verification", nil).Capture(page, "x.png")
		var diag *DiagnosticIOError
		require.ErrorAs(t, err, &diag)
		assert.Equal(t, filepath.Join("verification", "x.png"), diag.Path)
	})

	t.Run("read-only filesystem is a diagnostic error", func(t *testing.T) {
		w := NewWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), "verification", nil)
		_, err := w.Capture(testutil.NewFakePage(), "x.png")
		var diag *DiagnosticIOError
		assert.ErrorAs(t, err, &diag)
	})

	t.Run("try capture logs and swallows", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), "verification", log.New(&buf, "", 0))
		assert.Empty(t, w.TryCapture(testutil.NewFakePage(), "x.png"))
		assert.Contains(t, buf.String(), "Screenshot skipped")
	})
}
