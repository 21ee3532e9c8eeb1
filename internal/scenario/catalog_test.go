package scenario

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/ui-smoke/internal/steps"
)

func TestSweep(t *testing.T) {
	list := Sweep(SweepOptions{
		Start:   "/",
		Targets: []string{"Dashboard", "Obrigações"},
		Settle:  time.Second,
	})
	require.Len(t, list, 2)

	sc := list[1]
	assert.Equal(t, "nav-obrigacoes", sc.ID())
	assert.Equal(t, "Obrigações", sc.Name())
	assert.Equal(t, "nav_to_obrigacoes.png", sc.ScreenshotTemplate())
	assert.Equal(t, []steps.Step{
		steps.Navigate{URL: "/"},
		steps.ClickByRole{Role: "link", Name: "Obrigações"},
		steps.Pause{Duration: time.Second},
	}, sc.Steps())
	assert.NoError(t, sc.Validate())

	bare := Sweep(SweepOptions{Prefix: "menu", Role: "menuitem", Targets: []string{"Agenda"}, Screenshot: "{target}.png"})
	require.Len(t, bare, 1)
	assert.Equal(t, "menu-agenda", bare[0].ID())
	assert.Equal(t, "agenda.png", bare[0].ScreenshotTemplate())
	assert.Equal(t, []steps.Step{steps.ClickByRole{Role: "menuitem", Name: "Agenda"}}, bare[0].Steps())
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	require.Len(t, all, 2+len(DefaultNavTargets))

	ids := map[string]bool{}
	for _, sc := range all {
		require.NoError(t, sc.Validate(), sc.ID())
		assert.False(t, ids[sc.ID()], "duplicate id %s", sc.ID())
		ids[sc.ID()] = true
	}
	assert.True(t, ids["create-client"])
	assert.True(t, ids["calendar"])
	assert.True(t, ids["nav-analises"])

	client := all[0]
	fill := client.Steps()[5].(steps.FillByLabel)
	assert.True(t, strings.HasPrefix(fill.Value, "Teste Playwright "))
	term := client.Terminal().(steps.AssertVisible)
	assert.Equal(t, fill.Value, term.Locator.Name, "terminal assertion looks for the filled name")

	assert.NotEqual(t, fill.Value, Catalog()[0].Steps()[5].(steps.FillByLabel).Value, "fresh name per catalog")
}

func TestSelect(t *testing.T) {
	all := Catalog()

	picked, missing := Select(all, nil)
	assert.Len(t, picked, len(all))
	assert.Empty(t, missing)

	picked, missing = Select(all, []string{"calendar", "nope", "create-client"})
	require.Len(t, picked, 2)
	assert.Equal(t, "calendar", picked[0].ID())
	assert.Equal(t, "create-client", picked[1].ID())
	assert.Equal(t, []string{"nope"}, missing)
}

func TestScenarioImmutable(t *testing.T) {
	list := []steps.Step{steps.Navigate{URL: "/a"}}
	sc := New("x", list)
	list[0] = steps.Navigate{URL: "/b"}
	assert.Equal(t, steps.Navigate{URL: "/a"}, sc.Steps()[0])

	got := sc.Steps()
	got[0] = steps.Navigate{URL: "/c"}
	assert.Equal(t, steps.Navigate{URL: "/a"}, sc.Steps()[0])
	assert.Equal(t, "x", sc.Name(), "name defaults to id")

	assert.Error(t, New("", list).Validate())
	assert.Error(t, New("empty", nil).Validate())
}
