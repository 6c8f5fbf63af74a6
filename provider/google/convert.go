package google

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	ai "github.com/codypharm/pharma-sidekick"
)

// convertMessages converts ai messages to genai contents. The Gemini API has
// no system role, so system messages are folded in as user turns.
func convertMessages(messages []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		var parts []*genai.Part

		if msg.Content != "" {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}

		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if tc.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					args = map[string]any{"raw": tc.Arguments}
				}
			}
			parts = append(parts, genai.NewPartFromFunctionCall(tc.Name, args))
		}

		for _, tr := range msg.ToolResults {
			response := map[string]any{}
			if err := json.Unmarshal([]byte(tr.Content), &response); err != nil {
				response = map[string]any{"result": tr.Content}
			}
			if tr.IsError {
				response["error"] = true
			}
			parts = append(parts, genai.NewPartFromFunctionResponse(tr.Name, response))
		}

		if len(parts) == 0 {
			continue
		}

		var role genai.Role = genai.RoleUser
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}
	return contents
}

func convertTools(tools []ai.Tool) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  convertJSONSchema(tool.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertToolChoice(choice ai.ToolChoice) *genai.ToolConfig {
	mode := genai.FunctionCallingConfigModeAuto
	switch choice {
	case ai.ToolChoiceNone:
		mode = genai.FunctionCallingConfigModeNone
	case ai.ToolChoiceRequired:
		mode = genai.FunctionCallingConfigModeAny
	}
	return &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
	}
}

// extractToolCalls pulls function calls out of response parts. Gemini does
// not assign call IDs, so deterministic ones are synthesized for matching
// results back to calls.
func extractToolCalls(parts []*genai.Part) []ai.ToolCall {
	var calls []ai.ToolCall
	for i, part := range parts {
		if part.FunctionCall == nil {
			continue
		}
		args, err := json.Marshal(part.FunctionCall.Args)
		if err != nil {
			args = []byte("{}")
		}
		calls = append(calls, ai.ToolCall{
			ID:        fmt.Sprintf("call_%d_%s", i, part.FunctionCall.Name),
			Name:      part.FunctionCall.Name,
			Arguments: string(args),
		})
	}
	return calls
}

// convertJSONSchema converts a raw JSON Schema document into the genai
// schema representation.
func convertJSONSchema(raw json.RawMessage) *genai.Schema {
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return &genai.Schema{Type: genai.TypeObject}
	}
	return convertSchemaObject(schema)
}

func convertSchemaObject(schema map[string]any) *genai.Schema {
	out := &genai.Schema{}

	switch t, _ := schema["type"].(string); t {
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	case "object":
		out.Type = genai.TypeObject
	default:
		out.Type = genai.TypeObject
	}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}

	if enum, ok := schema["enum"].([]any); ok {
		for _, v := range enum {
			if s, ok := v.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if p, ok := prop.(map[string]any); ok {
				out.Properties[name] = convertSchemaObject(p)
			}
		}
	}

	if required, ok := schema["required"].([]any); ok {
		for _, v := range required {
			if s, ok := v.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaObject(items)
	}

	return out
}
