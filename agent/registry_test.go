package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

type echoTool struct {
	def ToolDef
}

func (t *echoTool) Def() ToolDef { return t.def }
func (t *echoTool) Run(ctx context.Context, args map[string]interface{}) (string, error) {
	payload, _ := json.Marshal(args)
	return string(payload), nil
}

func testRegistry() *Registry {
	return NewRegistry(&echoTool{def: ToolDef{
		Name: "echo",
		Desc: "echoes its arguments",
		Params: map[string]*ParamSpec{
			"mode":    {Type: schema.String, Required: true, Enum: []string{"loud", "quiet"}},
			"count":   {Type: schema.Integer},
			"tags":    {Type: schema.Array, Elem: schema.String},
			"verbose": {Type: schema.Boolean},
		},
	}})
}

func TestRegistryExecuteValid(t *testing.T) {
	r := testRegistry()
	inv := r.Execute(context.Background(), "echo", `{"mode":"loud","count":3,"tags":["a","b"]}`)
	if inv.Error != "" {
		t.Fatalf("unexpected error: %s", inv.Error)
	}
	if !strings.Contains(inv.Result, `"mode":"loud"`) {
		t.Errorf("result should echo arguments: %s", inv.Result)
	}
}

func TestRegistryExecuteFailuresBecomePayloads(t *testing.T) {
	r := testRegistry()

	cases := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"unknown tool", "nope", `{}`, "unknown tool"},
		{"missing required", "echo", `{}`, "required field missing"},
		{"bad enum", "echo", `{"mode":"silent"}`, "not one of"},
		{"unexpected field", "echo", `{"mode":"loud","extra":1}`, "unexpected field"},
		{"non-integer", "echo", `{"mode":"loud","count":1.5}`, "expected an integer"},
		{"bad array element", "echo", `{"mode":"loud","tags":[1]}`, "expected a string"},
		{"not an object", "echo", `[1,2]`, "not a JSON object"},
	}
	for _, tc := range cases {
		inv := r.Execute(context.Background(), tc.tool, tc.args)
		if inv.Error == "" {
			t.Errorf("%s: expected a recorded error", tc.name)
			continue
		}
		if !strings.Contains(inv.Error, tc.want) {
			t.Errorf("%s: error %q should contain %q", tc.name, inv.Error, tc.want)
		}
		var payload map[string]string
		if err := json.Unmarshal([]byte(inv.Result), &payload); err != nil {
			t.Errorf("%s: result is not a JSON payload: %v", tc.name, err)
			continue
		}
		if payload["error"] == "" {
			t.Errorf("%s: payload should carry the error: %s", tc.name, inv.Result)
		}
	}
}

func TestRegistryEmptyArgumentsAreAnEmptyObject(t *testing.T) {
	r := NewRegistry(&echoTool{def: ToolDef{Name: "echo", Params: map[string]*ParamSpec{
		"focus": {Type: schema.String},
	}}})
	inv := r.Execute(context.Background(), "echo", "")
	if inv.Error != "" {
		t.Fatalf("empty arguments should validate: %s", inv.Error)
	}
}

func TestRegistryToolInfos(t *testing.T) {
	r := testRegistry()
	infos := r.ToolInfos(context.Background())
	if len(infos) != 1 || infos[0].Name != "echo" {
		t.Fatalf("unexpected infos: %+v", infos)
	}
	if infos[0].ParamsOneOf == nil {
		t.Error("params schema must be set")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate tool name")
		}
	}()
	NewRegistry(
		&echoTool{def: ToolDef{Name: "echo"}},
		&echoTool{def: ToolDef{Name: "echo"}},
	)
}
