package api

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// ToolDefinitions returns the partition-operation tool schemas offered
// to the model. The agent never touches the filesystem directly in API
// mode; every mutation goes through these tools, which keeps the
// corpus read-only and the partition records schema-valid.
func ToolDefinitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        "list_files",
				Description: anthropic.String("List corpus files, optionally below a directory. Paths are relative to the corpus root."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"dir": map[string]interface{}{
							"type":        "string",
							"description": "Directory to list (optional; empty lists the whole corpus)",
						},
					},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "list_partitions",
				Description: anthropic.String("List the current partitions with their ids, titles, and path references."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "create_partition",
				Description: anthropic.String("Create a new partition. The id is assigned automatically. Directory paths must end with '/'."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"title": map[string]interface{}{
							"type":        "string",
							"description": "Concise label (<= 8 words) for the partition's content",
						},
						"description": map[string]interface{}{
							"type":        "string",
							"description": "2-3 sentences on how the files in this partition relate",
						},
						"paths": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "File or directory paths relative to the corpus root",
						},
					},
					Required: []string{"title", "description", "paths"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "delete_partition",
				Description: anthropic.String("Delete a partition by id. Ids are not reused."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"partition_id": map[string]interface{}{
							"type":        "integer",
							"description": "Id of the partition to delete",
						},
					},
					Required: []string{"partition_id"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "validate_partitions",
				Description: anthropic.String("Validate the current partition set for complete, disjoint coverage of the corpus. Returns the diagnostic report, or confirms validity."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{},
				},
			},
		},
	}
}

// FormatToolAction renders a short human-readable account of a tool
// call for the event stream.
func FormatToolAction(name string, input json.RawMessage) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(input, &fields); err != nil {
		return name
	}
	switch name {
	case "list_files":
		if dir, _ := fields["dir"].(string); dir != "" {
			return fmt.Sprintf("list_files: %s", dir)
		}
		return "list_files"
	case "create_partition":
		title, _ := fields["title"].(string)
		paths, _ := fields["paths"].([]interface{})
		return fmt.Sprintf("create_partition: %s (%d paths)", title, len(paths))
	case "delete_partition":
		if id, ok := fields["partition_id"].(float64); ok {
			return fmt.Sprintf("delete_partition: %d", int(id))
		}
		return "delete_partition"
	default:
		return name
	}
}
