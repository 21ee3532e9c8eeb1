package scenario

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gotrs-io/ui-smoke/internal/artifacts"
	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/steps"
	"github.com/gotrs-io/ui-smoke/internal/wait"
)

// DefaultNavTargets are the sidebar entries of the obligations application.
var DefaultNavTargets = []string{
	"Dashboard",
	"Obrigações",
	"Impostos",
	"Parcelamentos",
	"Clientes",
	"Agenda",
	"Análises",
}

// SweepOptions describes a navigation sweep.
type SweepOptions struct {
	// Prefix is prepended to each generated scenario id.
	Prefix string
	// Start, when set, is loaded before each click so every target starts
	// from the same page.
	Start   string
	Role    string
	Targets []string
	Settle  time.Duration
	// Screenshot is a template; "{target}" expands to the target slug.
	Screenshot string
}

// Sweep builds one scenario per target: optionally load Start, click the
// target by role, let the page settle, then take the terminal screenshot.
func Sweep(opts SweepOptions) []Scenario {
	if opts.Role == "" {
		opts.Role = "link"
	}
	if opts.Prefix == "" {
		opts.Prefix = "nav"
	}
	if opts.Screenshot == "" {
		opts.Screenshot = "nav_to_{target}.png"
	}
	out := make([]Scenario, 0, len(opts.Targets))
	for _, target := range opts.Targets {
		var list []steps.Step
		if opts.Start != "" {
			list = append(list, steps.Navigate{URL: opts.Start})
		}
		list = append(list, steps.ClickByRole{Role: opts.Role, Name: target})
		if opts.Settle > 0 {
			list = append(list, steps.Pause{Duration: opts.Settle})
		}
		out = append(out, New(
			opts.Prefix+"-"+artifacts.Slug(target),
			list,
			WithName(target),
			WithScreenshot(strings.ReplaceAll(opts.Screenshot, "{target}", artifacts.Slug(target))),
		))
	}
	return out
}

// CreateClient opens the client dialog, fills it in and checks the new row.
// clientName should be unique per run.
func CreateClient(clientName string) Scenario {
	dialog := browser.Role("dialog", "")
	return New("create-client", []steps.Step{
		steps.Navigate{URL: "/clients"},
		steps.AssertVisible{Locator: browser.Role("heading", "Clientes"), Timeout: wait.DefaultReadyTimeout},
		steps.ClickByRole{Role: "button", Name: "Novo Cliente"},
		steps.AssertVisible{Locator: dialog},
		steps.AssertVisible{Locator: browser.Role("heading", "Cadastrar Novo Cliente")},
		steps.FillByLabel{Label: "Nome", Value: clientName},
		steps.FillByLabel{Label: "Documento", Value: "12345678901"},
		steps.FillByLabel{Label: "Email", Value: "teste@playwright.com"},
		steps.FillByLabel{Label: "Telefone", Value: "123456789"},
		steps.ClickByRole{Role: "button", Name: "Salvar"},
		steps.AssertNotVisible{Locator: dialog},
	},
		WithName("Clientes"),
		WithTerminal(steps.AssertVisible{Locator: browser.Role("cell", clientName)}),
		WithScreenshot("clients_verification.png"),
	)
}

// Calendar checks that the month grid renders with its day cells.
func Calendar() Scenario {
	return New("calendar", []steps.Step{
		steps.Navigate{URL: "/calendar"},
		steps.AssertVisible{Locator: browser.Role("grid", ""), Timeout: wait.DefaultReadyTimeout},
	},
		WithName("Agenda"),
		WithTerminal(steps.Wait{Condition: wait.Spec{
			Kind:    wait.KindCount,
			Locator: browser.CSS("button[role='gridcell']"),
			Count:   wait.AtLeast(28),
		}}),
		WithScreenshot("calendar_verification.png"),
	)
}

// Catalog returns the built-in scenarios for the obligations application.
func Catalog() []Scenario {
	list := []Scenario{
		CreateClient("Teste Playwright " + uuid.NewString()),
		Calendar(),
	}
	return append(list, Sweep(SweepOptions{
		Start:   "/",
		Targets: DefaultNavTargets,
		Settle:  2 * time.Second,
	})...)
}

// Select filters scenarios by id, keeping the requested order. An empty id
// list returns all scenarios.
func Select(all []Scenario, ids []string) ([]Scenario, []string) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]Scenario, len(all))
	for _, s := range all {
		byID[s.id] = s
	}
	var picked []Scenario
	var missing []string
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			picked = append(picked, s)
		} else {
			missing = append(missing, id)
		}
	}
	return picked, missing
}
