package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"corral/internal/corpus"
	"corral/internal/partition"
	"corral/internal/reconcile"
	"corral/pkg/models"
)

// ToolExecutor dispatches the model's tool calls onto the partition
// store and corpus. It holds the only mutable handle the API agent
// gets; the corpus itself is never written.
type ToolExecutor struct {
	corpusRoot string
	store      *partition.Store
}

// NewToolExecutor creates an executor over the given corpus root and
// partition store.
func NewToolExecutor(corpusRoot string, store *partition.Store) *ToolExecutor {
	return &ToolExecutor{corpusRoot: corpusRoot, store: store}
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	Content string
	IsError bool
}

func errResult(format string, args ...interface{}) ToolResult {
	return ToolResult{Content: fmt.Sprintf(format, args...), IsError: true}
}

// Execute runs a tool by name with the given JSON input.
func (e *ToolExecutor) Execute(ctx context.Context, name string, input json.RawMessage) ToolResult {
	if err := ctx.Err(); err != nil {
		return errResult("cancelled: %v", err)
	}

	switch name {
	case "list_files":
		return e.listFiles(input)
	case "list_partitions":
		return e.listPartitions()
	case "create_partition":
		return e.createPartition(input)
	case "delete_partition":
		return e.deletePartition(input)
	case "validate_partitions":
		return e.validatePartitions()
	default:
		return errResult("unknown tool: %s", name)
	}
}

func (e *ToolExecutor) listFiles(input json.RawMessage) ToolResult {
	var args struct {
		Dir string `json:"dir"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return errResult("bad list_files input: %v", err)
		}
	}

	snap, err := corpus.Build(e.corpusRoot)
	if err != nil {
		return errResult("list files: %v", err)
	}
	files := snap.Paths()
	if args.Dir != "" {
		files = snap.Under(strings.TrimSuffix(args.Dir, "/"))
	}
	if len(files) == 0 {
		return ToolResult{Content: "no files found"}
	}
	return ToolResult{Content: fmt.Sprintf("%d files:\n%s", len(files), strings.Join(files, "\n"))}
}

func (e *ToolExecutor) listPartitions() ToolResult {
	parts, malformed, err := e.store.LoadAll()
	if err != nil {
		return errResult("list partitions: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d partitions\n", len(parts))
	for _, p := range parts {
		fmt.Fprintf(&b, "[%d] %s\n", p.ID, p.Title)
		for _, ref := range p.Paths {
			fmt.Fprintf(&b, "    %s\n", ref)
		}
	}
	for _, m := range malformed {
		fmt.Fprintf(&b, "malformed: %s\n", m.Error())
	}
	return ToolResult{Content: strings.TrimRight(b.String(), "\n")}
}

func (e *ToolExecutor) createPartition(input json.RawMessage) ToolResult {
	var args struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Paths       []string `json:"paths"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return errResult("bad create_partition input: %v", err)
	}

	id, err := e.store.NextID()
	if err != nil {
		return errResult("allocate partition id: %v", err)
	}
	p, err := models.NewPartition(id, args.Title, args.Description, args.Paths)
	if err != nil {
		return errResult("create partition: %v", err)
	}
	if err := e.store.Save(p); err != nil {
		return errResult("save partition: %v", err)
	}
	return ToolResult{Content: fmt.Sprintf("created partition %d: %s (%d paths)", p.ID, p.Title, len(p.Paths))}
}

func (e *ToolExecutor) deletePartition(input json.RawMessage) ToolResult {
	var args struct {
		ID int `json:"partition_id"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return errResult("bad delete_partition input: %v", err)
	}
	if err := e.store.Delete(args.ID); err != nil {
		return errResult("delete partition: %v", err)
	}
	return ToolResult{Content: fmt.Sprintf("deleted partition %d", args.ID)}
}

func (e *ToolExecutor) validatePartitions() ToolResult {
	result, err := reconcile.Check(e.corpusRoot, e.store)
	if err != nil {
		return errResult("validate: %v", err)
	}
	if result.Valid() {
		return ToolResult{Content: "VALID: " + result.Summary()}
	}
	// Full report so the model sees every problem in one pass.
	return ToolResult{Content: "INVALID\n\n" + result.Report()}
}
