package analysis

import "google.golang.org/genai"

// responseSchema is the fixed structured-output contract for analysis
// requests: required string summary, required 5-10 entry glossary of
// term/definition objects, required 3-5 entry keyInsights string array.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "Concise summary of the document at the requested comprehension level.",
			},
			"glossary": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr(int64(5)),
				MaxItems: genai.Ptr(int64(10)),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"term":       {Type: genai.TypeString},
						"definition": {Type: genai.TypeString},
					},
					Required: []string{"term", "definition"},
				},
			},
			"keyInsights": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr(int64(3)),
				MaxItems: genai.Ptr(int64(5)),
				Items:    &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"summary", "glossary", "keyInsights"},
	}
}
