package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gotrs-io/ui-smoke/internal/suite"
)

// WriteJSON stores the report as indented JSON.
func WriteJSON(fs afero.Fs, path string, r *suite.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return writeFile(fs, path, append(data, '\n'))
}

// Markdown renders the report as a Markdown document. Screenshot links are
// relative to baseDir so the HTML report can sit next to the images.
func Markdown(r *suite.Report, baseDir string) string {
	var b strings.Builder
	overall := "PASS"
	if !r.OK() {
		overall = "FAIL"
	}
	fmt.Fprintf(&b, "# Smoke run %s: %s\n\n", r.RunID, overall)
	fmt.Fprintf(&b, "- Target: `%s`\n- Policy: `%s`\n- Started: %s\n- Duration: %s\n\n",
		r.BaseURL, r.Policy, r.Started.Format("2006-01-02 15:04:05"), FormatDuration(r.Elapsed))
	fmt.Fprintf(&b, "**%d passed, %d failed, %d errored, %d skipped**\n\n", r.Passed, r.Failed, r.Errored, r.Skipped)

	b.WriteString("| Scenario | Status | Duration | Reason |\n|---|---|---|---|\n")
	for _, res := range r.Results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeCell(res.Name), statusString(res.Status), FormatDuration(res.Elapsed), escapeCell(res.Reason))
	}

	for _, res := range r.Results {
		if len(res.Screenshots) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", escapeCell(res.Name))
		for _, shot := range res.Screenshots {
			rel := shot
			if baseDir != "" {
				if p, err := filepath.Rel(baseDir, shot); err == nil {
					rel = p
				}
			}
			fmt.Fprintf(&b, "![%s](%s)\n\n", filepath.Base(shot), filepath.ToSlash(rel))
		}
	}
	return b.String()
}

// HTML renders the Markdown report to sanitised HTML. Scenario names and
// failure reasons may contain page text, so the output goes through a UGC
// policy.
func HTML(r *suite.Report, baseDir string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(r, baseDir)), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	body := bluemonday.UGCPolicy().Sanitize(buf.String())
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Smoke run " + r.RunID +
		"</title></head><body>\n" + body + "</body></html>\n", nil
}

// WriteHTML renders and stores the HTML report.
func WriteHTML(fs afero.Fs, path string, r *suite.Report) error {
	doc, err := HTML(r, filepath.Dir(path))
	if err != nil {
		return err
	}
	return writeFile(fs, path, []byte(doc))
}

func writeFile(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
