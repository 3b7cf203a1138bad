package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"
)

// DiffDocuments renders a YAML-aware diff between two values.
// Both values are serialized through their JSON tags. An empty string means
// no differences.
func DiffDocuments(before, after any, useColor bool) (string, error) {
	beforeYAML, err := yaml.Marshal(before)
	if err != nil {
		return "", fmt.Errorf("serializing current state: %w", err)
	}
	afterYAML, err := yaml.Marshal(after)
	if err != nil {
		return "", fmt.Errorf("serializing planned state: %w", err)
	}

	from, err := parseYAMLInput("current", beforeYAML)
	if err != nil {
		return "", fmt.Errorf("parsing current YAML: %w", err)
	}
	to, err := parseYAMLInput("planned", afterYAML)
	if err != nil {
		return "", fmt.Errorf("parsing planned YAML: %w", err)
	}

	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := reportWriter.WriteReport(&buf); err != nil {
		return "", fmt.Errorf("rendering diff: %w", err)
	}
	return buf.String(), nil
}

// parseYAMLInput parses YAML bytes into a dyff input file.
func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{
		Location:  name,
		Documents: docs,
	}, nil
}

// RenderPlan renders the dry-run result for one account.
func RenderPlan(identity, diff string) string {
	var sb strings.Builder
	sb.WriteString(StyleSummary.Render("Planned changes for "))
	sb.WriteString(StyleNoun.Render(identity))
	sb.WriteString("\n")

	if strings.TrimSpace(diff) == "" {
		sb.WriteString("No changes detected.\n")
		return sb.String()
	}

	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
