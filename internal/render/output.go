package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"scenario-analysis/web/internal/analysis"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for output formats other than human, json and yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Display writes the analysis to w in the requested format.
func Display(w io.Writer, resp analysis.Response, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, resp)
	case FormatYAML:
		return displayYAML(w, resp)
	case FormatHuman:
		displayHuman(w, resp)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func displayJSON(w io.Writer, resp analysis.Response) error {
	output, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, resp analysis.Response) error {
	output, err := yaml.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, resp analysis.Response) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintln(w, strings.ToUpper(analysis.TitleSummary))
	fmt.Fprintln(w, wrapText(resp.ScenarioSummary, 80, "   "))
	fmt.Fprintln(w)

	for _, section := range resp.Sections() {
		yellow.Fprintln(w, strings.ToUpper(section.Title))
		for i, item := range section.Items {
			fmt.Fprintf(w, "   %d. %s\n", i+1, item)
		}
		fmt.Fprintln(w)
	}

	white.Fprintln(w, strings.ToUpper(analysis.TitleDisclaimer))
	fmt.Fprintln(w, wrapText(resp.Disclaimer, 80, "   "))
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintln(w, color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func wrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent
	}

	var lines []string
	line := indent
	for _, word := range words {
		if len(line) > len(indent) && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = indent
		}
		if len(line) > len(indent) {
			line += " "
		}
		line += word
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
