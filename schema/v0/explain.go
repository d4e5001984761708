// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ennio-run/ennio/schema"
)

// Explain renders a markdown description of the named workflows, or of every workflow when none are named
func (f File) Explain(names ...string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Workflow file (%s)\n\n", f.SchemaVersion)
	sb.WriteString("## Workflows\n\n")

	selected := f.Workflows.OrderedNames()
	if len(names) > 0 {
		selected = slices.DeleteFunc(selected, func(n string) bool {
			return !slices.Contains(names, n)
		})
	}

	if len(selected) == 0 {
		sb.WriteString("No workflows found.\n")
		return sb.String()
	}

	for _, name := range selected {
		explainWorkflow(&sb, name, f.Workflows[name])
	}

	if len(names) == 0 {
		sb.WriteString("## Usage\n\n```sh\n")
		fmt.Fprintf(&sb, "%-24s # Run the default workflow\n", "ennio")
		for _, name := range selected {
			if name == schema.DefaultWorkflowName {
				continue
			}
			fmt.Fprintf(&sb, "%-24s # Run %s\n", "ennio "+name, name)
		}
		sb.WriteString("```\n")
	}

	return sb.String()
}

func explainWorkflow(sb *strings.Builder, name string, wf Workflow) {
	if name == schema.DefaultWorkflowName {
		fmt.Fprintf(sb, "### `%s` (Default Workflow)\n\n", name)
	} else {
		fmt.Fprintf(sb, "### `%s`\n\n", name)
	}

	if wf.Description != "" {
		sb.WriteString(strings.TrimSpace(wf.Description))
		sb.WriteString("\n\n")
	}

	if len(wf.Actions) == 0 {
		sb.WriteString("No actions.\n\n")
		return
	}

	sb.WriteString("**Actions:**\n\n")
	for i, a := range wf.Actions {
		fmt.Fprintf(sb, "%d. **%s**\n\n", i+1, a.Name)

		switch {
		case a.Run != "":
			shell := a.Shell
			if shell == "" {
				shell = "bash"
			}
			lang := shell
			if shell == "pwsh" {
				lang = "powershell"
			}
			fmt.Fprintf(sb, "   ```%s\n", lang)
			for line := range strings.SplitSeq(strings.TrimRight(a.Run, "\n"), "\n") {
				fmt.Fprintf(sb, "   %s\n", line)
			}
			sb.WriteString("   ```\n\n")
		case a.Uses != "":
			fmt.Fprintf(sb, "   Uses: `%s`\n\n", a.Uses)
			keys := make([]string, 0, len(a.With))
			for k := range a.With {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(sb, "   - `%s`: `%v`\n", k, a.With[k])
			}
			if len(keys) > 0 {
				sb.WriteString("\n")
			}
		}

		var conf []string
		if a.Dir != "" {
			conf = append(conf, fmt.Sprintf("Working directory: `%s`", a.Dir))
		}
		if len(a.Env) > 0 {
			conf = append(conf, fmt.Sprintf("Environment variables: %d set", len(a.Env)))
		}
		if len(conf) > 0 {
			fmt.Fprintf(sb, "   *Configuration:* %s\n\n", strings.Join(conf, " • "))
		}
	}
}
