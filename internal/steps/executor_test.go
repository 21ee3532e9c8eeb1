package steps

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/ui-smoke/internal/artifacts"
	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/testutil"
	"github.com/gotrs-io/ui-smoke/internal/wait"
)

const base = "http://app.test"

var fast = Timeouts{
	Navigation:   time.Second,
	Interaction:  100 * time.Millisecond,
	PollInterval: 10 * time.Millisecond,
}

func newExecutor(fs afero.Fs) *PageExecutor {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	return NewPageExecutor(base+"/", fast, artifacts.NewWriter(fs, "verification", nil), nil)
}

func TestURL(t *testing.T) {
	e := newExecutor(nil)
	assert.Equal(t, "http://app.test/clients", e.URL("/clients"))
	assert.Equal(t, "http://app.test/clients", e.URL("clients"))
	assert.Equal(t, "http://app.test/", e.URL("/"))
	assert.Equal(t, "https://other.test/x", e.URL("https://other.test/x"))
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()
	e := newExecutor(nil)

	t.Run("ok", func(t *testing.T) {
		page := testutil.NewFakePage().OnGoto(base+"/clients", 200, nil)
		out, err := e.Execute(ctx, page, Navigate{URL: "/clients"})
		require.NoError(t, err)
		assert.True(t, out.OK())
		assert.Equal(t, base+"/clients", page.URL())
	})

	t.Run("4xx still loads", func(t *testing.T) {
		page := testutil.NewFakePage().OnGoto(base+"/missing", 404, nil)
		out, err := e.Execute(ctx, page, Navigate{URL: "/missing"})
		require.NoError(t, err)
		assert.True(t, out.OK())
	})

	t.Run("server error", func(t *testing.T) {
		page := testutil.NewFakePage().OnGoto(base+"/", 502, nil)
		out, err := e.Execute(ctx, page, Navigate{URL: "/"})
		require.NoError(t, err)
		require.False(t, out.OK())
		assert.Equal(t, KindNavigation, out.Failure.Kind)
		assert.Equal(t, 502, out.Failure.Status)
		assert.ErrorIs(t, out.Failure, ErrNavigation)
	})

	t.Run("unreachable", func(t *testing.T) {
		page := testutil.NewFakePage()
		out, err := e.Execute(ctx, page, Navigate{URL: "/"})
		require.NoError(t, err)
		require.False(t, out.OK())
		assert.Equal(t, KindNavigation, out.Failure.Kind)
		assert.Contains(t, out.Failure.Error(), "ERR_CONNECTION_REFUSED")
	})

	t.Run("redirect loop", func(t *testing.T) {
		page := testutil.NewFakePage().FailGoto(base+"/login", errors.New("net::ERR_TOO_MANY_REDIRECTS"))
		out, err := e.Execute(ctx, page, Navigate{URL: "/login"})
		require.NoError(t, err)
		require.False(t, out.OK())
		assert.Contains(t, out.Failure.Detail, "redirect loop")
	})
}

func TestClickByRole(t *testing.T) {
	ctx := context.Background()
	e := newExecutor(nil)
	save := browser.Role("button", "Salvar")

	t.Run("single match is clicked", func(t *testing.T) {
		clicked := false
		page := testutil.NewFakePage().Show(save).OnClick(save, func(*testutil.FakePage) { clicked = true })
		out, err := e.Execute(ctx, page, ClickByRole{Role: "button", Name: "Salvar"})
		require.NoError(t, err)
		assert.True(t, out.OK())
		assert.True(t, clicked)
	})

	t.Run("late element is awaited", func(t *testing.T) {
		page := testutil.NewFakePage()
		page.SetAfter(30*time.Millisecond, func(p *testutil.FakePage) { p.Show(save) })
		out, err := e.Execute(ctx, page, ClickByRole{Role: "button", Name: "Salvar"})
		require.NoError(t, err)
		assert.True(t, out.OK())
	})

	t.Run("no match", func(t *testing.T) {
		page := testutil.NewFakePage()
		out, err := e.Execute(ctx, page, ClickByRole{Role: "button", Name: "Salvar"})
		require.NoError(t, err)
		require.False(t, out.OK())
		assert.Equal(t, KindNotFound, out.Failure.Kind)
		assert.ErrorIs(t, out.Failure, ErrNotFound)
		assert.NotContains(t, page.Calls(), `click role=button[name="Salvar"]`)
	})

	t.Run("ambiguous match", func(t *testing.T) {
		page := testutil.NewFakePage().Set(save, true, true)
		out, err := e.Execute(ctx, page, ClickByRole{Role: "button", Name: "Salvar"})
		require.NoError(t, err)
		require.False(t, out.OK())
		assert.Equal(t, KindAmbiguous, out.Failure.Kind)
		assert.Contains(t, out.Failure.Detail, "matched 2 elements")
		assert.Empty(t, page.Calls(), "nothing clicked")
	})

	t.Run("engine error", func(t *testing.T) {
		page := testutil.NewFakePage().Show(save)
		page.ClickErr = errors.New("target closed")
		_, err := e.Execute(ctx, page, ClickByRole{Role: "button", Name: "Salvar"})
		assert.ErrorContains(t, err, "target closed")
	})

	t.Run("persistent count error", func(t *testing.T) {
		page := testutil.NewFakePage()
		page.CountErr = errors.New("execution context destroyed")
		_, err := e.Execute(ctx, page, ClickByRole{Role: "button", Name: "Salvar"})
		assert.ErrorContains(t, err, "execution context destroyed")
	})
}

func TestFillByLabel(t *testing.T) {
	ctx := context.Background()
	e := newExecutor(nil)
	name := browser.Label("Nome")

	page := testutil.NewFakePage().Show(name)
	out, err := e.Execute(ctx, page, FillByLabel{Label: "Nome", Value: "Teste Playwright"})
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.Equal(t, "Teste Playwright", page.Filled(name))

	out, err = e.Execute(ctx, page, FillByLabel{Label: "Documento", Value: "1"})
	require.NoError(t, err)
	require.False(t, out.OK())
	assert.Equal(t, KindNotFound, out.Failure.Kind)
}

func TestAssertions(t *testing.T) {
	ctx := context.Background()
	e := newExecutor(nil)
	dialog := browser.Role("dialog", "")

	t.Run("visible", func(t *testing.T) {
		page := testutil.NewFakePage().Show(dialog)
		out, err := e.Execute(ctx, page, AssertVisible{Locator: dialog})
		require.NoError(t, err)
		assert.True(t, out.OK())
	})

	t.Run("visible times out with the step timeout", func(t *testing.T) {
		page := testutil.NewFakePage()
		start := time.Now()
		out, err := e.Execute(ctx, page, AssertVisible{Locator: dialog, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)
		require.False(t, out.OK())
		assert.Equal(t, KindAssertionTimeout, out.Failure.Kind)
		assert.ErrorIs(t, out.Failure, ErrAssertionTimeout)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("not visible once the dialog closes", func(t *testing.T) {
		page := testutil.NewFakePage().Show(dialog)
		page.SetAfter(30*time.Millisecond, func(p *testutil.FakePage) { p.Remove(dialog) })
		out, err := e.Execute(ctx, page, AssertNotVisible{Locator: dialog})
		require.NoError(t, err)
		assert.True(t, out.OK())
	})

	t.Run("not visible times out", func(t *testing.T) {
		page := testutil.NewFakePage().Show(dialog)
		out, err := e.Execute(ctx, page, AssertNotVisible{Locator: dialog})
		require.NoError(t, err)
		assert.False(t, out.OK())
	})

	t.Run("wait count", func(t *testing.T) {
		cells := browser.CSS("button[role='gridcell']")
		page := testutil.NewFakePage().Set(cells, make([]bool, 27)...)
		step := Wait{Condition: wait.Spec{Kind: wait.KindCount, Locator: cells, Count: wait.AtLeast(28)}}

		out, err := e.Execute(ctx, page, step)
		require.NoError(t, err)
		assert.False(t, out.OK())

		page.Set(cells, make([]bool, 35)...)
		out, err = e.Execute(ctx, page, step)
		require.NoError(t, err)
		assert.True(t, out.OK())
	})
}

func TestScreenshotStep(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		out, err := newExecutor(fs).Execute(ctx, testutil.NewFakePage(), Screenshot{Path: "step.png"})
		require.NoError(t, err)
		assert.True(t, out.OK())
		assert.Equal(t, []string{filepath.Join("verification", "step.png")}, out.Artifacts)
		exists, _ := afero.Exists(fs, filepath.Join("verification", "step.png"))
		assert.True(t, exists)
	})

	t.Run("write failure does not fail the step", func(t *testing.T) {
		var buf bytes.Buffer
		w := artifacts.NewWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), "verification", log.New(&buf, "", 0))
		e := NewPageExecutor(base, fast, w, nil)
		out, err := e.Execute(ctx, testutil.NewFakePage(), Screenshot{Path: "step.png"})
		require.NoError(t, err)
		assert.True(t, out.OK())
		assert.Empty(t, out.Artifacts)
		assert.Contains(t, buf.String(), "Screenshot skipped")
	})
}

func TestPause(t *testing.T) {
	e := newExecutor(nil)

	start := time.Now()
	out, err := e.Execute(context.Background(), testutil.NewFakePage(), Pause{Duration: 40 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	_, _ = e.Execute(ctx, testutil.NewFakePage(), Pause{Duration: time.Minute})
	assert.Less(t, time.Since(start), time.Second)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Navigate{URL: "/"}))
	assert.NoError(t, Validate(ClickByRole{Role: "link", Name: "Agenda"}))
	assert.NoError(t, Validate(Pause{Duration: time.Second}))

	assert.Error(t, Validate(Navigate{}))
	assert.Error(t, Validate(ClickByRole{Name: "Agenda"}))
	assert.Error(t, Validate(FillByLabel{Value: "x"}))
	assert.Error(t, Validate(Screenshot{}))
	assert.Error(t, Validate(Pause{Duration: -time.Second}))
	assert.Error(t, Validate(nil))
}
