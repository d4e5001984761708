// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package mcptools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	v0 "github.com/ennio-run/ennio/schema/v0"
)

// WorkflowSchema returns the JSON schema of workflow files
func WorkflowSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v0.WorkFlowSchema())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
