package mcp

import (
	"encoding/json"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Normalize flattens an MCP tool result into a single text form the model
// can consume: text parts pass through, structured content is serialized as
// indented JSON, and mixed parts are concatenated in the order returned.
func Normalize(res *mcpsdk.CallToolResult) string {
	if res == nil {
		return ""
	}

	var parts []string
	for _, c := range res.Content {
		switch v := c.(type) {
		case *mcpsdk.TextContent:
			parts = append(parts, v.Text)
		default:
			if raw, err := json.MarshalIndent(v, "", "  "); err == nil {
				parts = append(parts, string(raw))
			}
		}
	}

	if len(parts) == 0 && res.StructuredContent != nil {
		if raw, err := json.MarshalIndent(res.StructuredContent, "", "  "); err == nil {
			parts = append(parts, string(raw))
		}
	}

	return strings.Join(parts, "\n")
}
