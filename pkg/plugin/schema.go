package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// RunResult is the wire form of a successful template run.
type RunResult struct {
	Actions []Action `json:"actions" jsonschema:"required"`
}

const runResultSchemaID = "https://github.com/ormasoftchile/scaff/schemas/run-result-v0.json"

// GenerateRunResultSchema produces the JSON Schema for RunResult.
func GenerateRunResultSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&RunResult{})
	s.ID = runResultSchemaID
	s.Title = "scaff template run result v0"
	s.Description = "Action list returned by a template plugin's run call"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

var (
	compiledOnce sync.Once
	compiled     *sjsonschema.Schema
	compileErr   error
)

func runResultSchema() (*sjsonschema.Schema, error) {
	compiledOnce.Do(func() {
		data, err := GenerateRunResultSchema()
		if err != nil {
			compileErr = err
			return
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			compileErr = fmt.Errorf("unmarshal schema: %w", err)
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource(runResultSchemaID, doc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(runResultSchemaID)
	})
	return compiled, compileErr
}

// DecodeRunResult validates untrusted run output against the schema, then
// decodes it and checks every action's shape.
func DecodeRunResult(data []byte) ([]Action, error) {
	sch, err := runResultSchema()
	if err != nil {
		return nil, fmt.Errorf("run result schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal run result: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		var ve *sjsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, fmt.Errorf("run result does not match schema: %s", strings.TrimSpace(ve.Error()))
		}
		return nil, fmt.Errorf("validate run result: %w", err)
	}

	var res RunResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode run result: %w", err)
	}
	for i, a := range res.Actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	return res.Actions, nil
}
