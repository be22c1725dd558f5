package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"hough_detect_lines",
		"hough_space_image",
		"bahtinov_analyze",
		"bahtinov_overlay",
		"line_intersect",
		"line_point_distance",
		"focus_series_create",
		"focus_series_stats",
		"focus_series_delete",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be described.
			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s has no schema", name)
				}
			}
		})
	}
}

func TestToolDefinitions_ImageInput(t *testing.T) {
	imageTools := map[string]bool{
		"hough_detect_lines": true,
		"hough_space_image":  true,
		"bahtinov_analyze":   true,
		"bahtinov_overlay":   true,
	}

	for _, tool := range GetToolDefinitions() {
		if !imageTools[tool.Name] {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, name := range []string{"width", "height", "edges", "points", "pixels", "region", "max_theta", "neighbourhood_size"} {
				if _, ok := props[name]; !ok {
					t.Errorf("missing image parameter %s", name)
				}
			}

			method := props["edge_method"].(map[string]interface{})
			if method["default"] != edgeMethodThreshold {
				t.Errorf("edge_method default: got %v", method["default"])
			}
		})
	}
}

func TestToolDefinitions_SharedPropertiesNotAliased(t *testing.T) {
	tools := GetToolDefinitions()
	a := tools[0].InputSchema["properties"].(map[string]interface{})
	b := tools[1].InputSchema["properties"].(map[string]interface{})

	a["extra"] = true
	if _, ok := b["extra"]; ok {
		t.Error("tools share a properties map")
	}
}

func TestToolDefinitions_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(GetToolDefinitions())
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	for _, tool := range decoded {
		if _, ok := tool["inputSchema"]; !ok {
			t.Errorf("tool %v: missing inputSchema key", tool["name"])
		}
	}
}
