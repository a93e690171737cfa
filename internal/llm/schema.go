package llm

import "encoding/json"

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
type jsonSchema struct {
	Type                 string                 `json:"type"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Description          string                 `json:"description,omitempty"`
	MinItems             int                    `json:"minItems,omitempty"`
	MaxItems             int                    `json:"maxItems,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}

// fortuneJSONSchema constrains the model output to a complete sign record.
// The level is deliberately absent: the drawn grade is authoritative and is
// stamped onto the record after decoding.
var fortuneJSONSchema = &jsonSchema{
	Type: "object",
	Properties: map[string]*jsonSchema{
		"theme": {
			Type:        "string",
			Description: "御神签主题",
		},
		"sign_number": {
			Type:        "string",
			Description: "御神签编号(中文大写数字)",
		},
		"divine_title": {
			Type:        "string",
			Description: "神签标题/天启名（2-4字奇幻风格名称）",
		},
		"sections": {
			Type:        "array",
			Description: "签文主体",
			MinItems:    4,
			MaxItems:    8,
			Items: &jsonSchema{
				Type:        "object",
				Description: "签文主体",
				Properties: map[string]*jsonSchema{
					"name":    {Type: "string", Description: "分类名称"},
					"content": {Type: "string", Description: "分类的预言内容（1～2句话）"},
				},
				Required: []string{"name", "content"},
			},
		},
		"maxim": {
			Type:        "string",
			Description: "一句箴言/和歌（结尾注明出处）",
		},
		"intro": {
			Type:        "string",
			Description: "主题引入(不包含引号)：e.g. '「欢迎来到古树根下的祠堂。异界之风正为你捎来命运的启示…」'",
		},
		"end": {
			Type:        "string",
			Description: "主题总结(不包含引号)",
		},
	},
	Required: []string{"theme", "sign_number", "divine_title", "sections", "maxim", "intro"},
}
