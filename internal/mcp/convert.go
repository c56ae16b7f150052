package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolInfo converts an MCP tool descriptor into the eino declaration used
// for model-side function calling. Name, description, and the full input
// schema are carried over without loss.
func ToolInfo(t *mcpsdk.Tool) (*schema.ToolInfo, error) {
	info := &schema.ToolInfo{
		Name: t.Name,
		Desc: t.Description,
	}
	if t.InputSchema == nil {
		return info, nil
	}

	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema for %s: %w", t.Name, err)
	}
	js := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, js); err != nil {
		return nil, fmt.Errorf("parse input schema for %s: %w", t.Name, err)
	}
	info.ParamsOneOf = schema.NewParamsOneOfByJSONSchema(js)
	return info, nil
}

// ToolInfos converts a list of tool descriptors.
func ToolInfos(tools []*mcpsdk.Tool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := ToolInfo(t)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
