// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package mcptools

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ennio-run/ennio/fetch"
)

// DescribeOutput is the result of the describe-workflow tool
type DescribeOutput struct {
	FileDescription string            `json:"file-description"`
	Workflows       map[string]string `json:"workflows"`
}

var workflowDescription = template.Must(template.New("workflow description").Parse(strings.TrimSpace(`
{{- if .Description }}{{ .Description }}
{{ end -}}
has {{ .Actions | len }} actions
{{- range $i, $a := .Actions }}
- {{ $a.Name }}{{ if ne $a.Run "" }} is a {{ if $a.Shell }}{{ $a.Shell }}{{ else }}bash{{ end }} script{{ else if ne $a.Uses "" }} uses {{ $a.Uses }}{{ end }}
{{- end }}
`)))

// DescribeWorkflow fetches the workflow file at the from argument and describes each of its workflows
func DescribeWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, _ := getArgs(request)["from"].(string)
	if from == "" {
		return mcp.NewToolResultError("from parameter is required"), nil
	}

	uri, err := fetch.Parse(from, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := fetch.NewService()
	if err != nil {
		return nil, err
	}

	f, err := fetch.LoadFile(ctx, svc, uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := DescribeOutput{
		FileDescription: fmt.Sprintf("%s is schema version %s and has %d workflows: %s",
			uri, f.SchemaVersion, len(f.Workflows), strings.Join(f.Workflows.OrderedNames(), ", ")),
		Workflows: make(map[string]string, len(f.Workflows)),
	}

	for name, wf := range f.Workflows {
		var buf strings.Builder
		if err := workflowDescription.Execute(&buf, wf); err != nil {
			return nil, err
		}
		out.Workflows[name] = buf.String()
	}

	return jsonResult(out)
}
