package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestReadDoc_ValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var doc struct {
		Swagger     string                    `json:"swagger"`
		BasePath    string                    `json:"basePath"`
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]any            `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" || doc.BasePath != SwaggerInfo.BasePath {
		t.Fatalf("header = %q %q", doc.Swagger, doc.BasePath)
	}
	for path, method := range map[string]string{
		"/businesses/{id}/templates":           "post",
		"/businesses/{id}/templates/suggested": "get",
		"/businesses/{id}/reviews/eligible":    "get",
		"/businesses/{id}/responses/bulk":      "post",
		"/businesses/{id}/schedules/analytics": "get",
		"/schedules/{id}/cancel":               "post",
		"/templates/{id}":                      "delete",
	} {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("missing %s %s", method, path)
		}
	}
	if _, ok := doc.Definitions["handlers.ErrorResponse"]; !ok {
		t.Errorf("ErrorResponse definition missing")
	}
}
