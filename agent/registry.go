package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cloudwego/eino/schema"
)

// ParamSpec declares one tool parameter. Type uses eino's schema data types
// so the same declaration drives both the ToolInfo sent to the model and the
// validation applied to what the model sends back.
type ParamSpec struct {
	Type     schema.DataType
	Desc     string
	Required bool
	Enum     []string
	Elem     schema.DataType // element type when Type is Array
}

// ToolDef is a tool's fixed contract: its name, description and parameters.
type ToolDef struct {
	Name   string
	Desc   string
	Params map[string]*ParamSpec
}

// Tool is a registered capability. Run receives arguments that have already
// passed validation against Def().Params.
type Tool interface {
	Def() ToolDef
	Run(ctx context.Context, args map[string]interface{}) (string, error)
}

// Invocation records one tool execution. It is ephemeral: created per
// orchestration step and kept only as part of the turn's reply.
type Invocation struct {
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
	Error     string `json:"error,omitempty"`
}

// Registry is the fixed catalog of callable tools. It is sealed at
// construction; there is no registration after that, which bounds what
// model-directed execution can reach.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a sealed registry. Duplicate tool names are a
// programming error and panic.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Def().Name
		if _, dup := r.tools[name]; dup {
			panic(fmt.Sprintf("duplicate tool %q", name))
		}
		r.order = append(r.order, name)
		r.tools[name] = t
	}
	return r
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ToolInfos renders the catalog as eino tool schemas for model binding.
func (r *Registry) ToolInfos(ctx context.Context) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		def := r.tools[name].Def()
		params := make(map[string]*schema.ParameterInfo, len(def.Params))
		for pname, spec := range def.Params {
			info := &schema.ParameterInfo{
				Type:     spec.Type,
				Desc:     spec.Desc,
				Required: spec.Required,
				Enum:     spec.Enum,
			}
			if spec.Type == schema.Array {
				info.ElemInfo = &schema.ParameterInfo{Type: spec.Elem}
			}
			params[pname] = info
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// Execute validates and runs one tool call. Failures never escape as Go
// errors: they come back as a structured error payload in the invocation
// result so the orchestrator can feed them to the model as a tool-result
// turn and let it correct itself.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) Invocation {
	inv := Invocation{Tool: name, Arguments: argsJSON}

	tool, ok := r.tools[name]
	if !ok {
		inv.Error = fmt.Sprintf("unknown tool %q", name)
		inv.Result = errorPayload(name, inv.Error)
		return inv
	}

	args, err := decodeArgs(tool.Def(), argsJSON)
	if err != nil {
		inv.Error = err.Error()
		inv.Result = errorPayload(name, inv.Error)
		return inv
	}

	result, err := tool.Run(ctx, args)
	if err != nil {
		inv.Error = err.Error()
		inv.Result = errorPayload(name, inv.Error)
		return inv
	}
	inv.Result = result
	return inv
}

func errorPayload(tool, msg string) string {
	payload, _ := json.Marshal(map[string]string{"tool": tool, "error": msg})
	return string(payload)
}

// decodeArgs parses and validates the model's JSON arguments against the
// declared parameters. Malformed or unexpected input is rejected, not
// coerced.
func decodeArgs(def ToolDef, argsJSON string) (map[string]interface{}, error) {
	if argsJSON == "" {
		argsJSON = "{}"
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, &InvalidToolArgumentsError{Tool: def.Name, Reason: fmt.Sprintf("arguments are not a JSON object: %v", err)}
	}

	for field := range args {
		if _, declared := def.Params[field]; !declared {
			return nil, &InvalidToolArgumentsError{Tool: def.Name, Field: field, Reason: "unexpected field"}
		}
	}
	for field, spec := range def.Params {
		v, present := args[field]
		if !present || v == nil {
			if spec.Required {
				return nil, &InvalidToolArgumentsError{Tool: def.Name, Field: field, Reason: "required field missing"}
			}
			continue
		}
		if err := checkType(def.Name, field, spec, v); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func checkType(tool, field string, spec *ParamSpec, v interface{}) error {
	bad := func(reason string) error {
		return &InvalidToolArgumentsError{Tool: tool, Field: field, Reason: reason}
	}

	switch spec.Type {
	case schema.String:
		s, ok := v.(string)
		if !ok {
			return bad("expected a string")
		}
		if len(spec.Enum) > 0 {
			for _, allowed := range spec.Enum {
				if s == allowed {
					return nil
				}
			}
			return bad(fmt.Sprintf("value %q is not one of %v", s, spec.Enum))
		}
	case schema.Number:
		if _, ok := v.(float64); !ok {
			return bad("expected a number")
		}
	case schema.Integer:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return bad("expected an integer")
		}
	case schema.Boolean:
		if _, ok := v.(bool); !ok {
			return bad("expected a boolean")
		}
	case schema.Array:
		items, ok := v.([]interface{})
		if !ok {
			return bad("expected an array")
		}
		for i, item := range items {
			elemSpec := &ParamSpec{Type: spec.Elem}
			if err := checkType(tool, fmt.Sprintf("%s[%d]", field, i), elemSpec, item); err != nil {
				return err
			}
		}
	default:
		return bad(fmt.Sprintf("unsupported parameter type %v", spec.Type))
	}
	return nil
}

// stringArg reads an optional string argument.
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// stringSliceArg reads an optional array-of-string argument.
func stringSliceArg(args map[string]interface{}, key string) []string {
	items, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, sok := item.(string); sok {
			out = append(out, s)
		}
	}
	return out
}
