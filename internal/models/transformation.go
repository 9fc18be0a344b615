package models

// Transformation describes one AI transformation the media CDN can apply.
type Transformation struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	SubTitle string         `json:"subTitle"`
	Config   map[string]any `json:"config"`
	Icon     string         `json:"icon"`
}

// Transformations is the fixed catalogue keyed by type.
func Transformations() map[string]Transformation {
	return map[string]Transformation{
		"restore": {
			Type:     "restore",
			Title:    "Restore Image",
			SubTitle: "Refine images by removing noise and imperfections",
			Config:   map[string]any{"restore": true},
			Icon:     "image.svg",
		},
		"removeBackground": {
			Type:     "removeBackground",
			Title:    "Background Remove",
			SubTitle: "Removes the background of the image using AI",
			Config:   map[string]any{"removeBackground": true},
			Icon:     "camera.svg",
		},
		"fill": {
			Type:     "fill",
			Title:    "Generative Fill",
			SubTitle: "Enhance an image's dimensions using AI outpainting",
			Config:   map[string]any{"fillBackground": true},
			Icon:     "stars.svg",
		},
		"remove": {
			Type:     "remove",
			Title:    "Object Remove",
			SubTitle: "Identify and eliminate objects from images",
			Config: map[string]any{
				"remove":       map[string]any{"prompt": ""},
				"removeShadow": true,
				"multiple":     true,
			},
			Icon: "scan.svg",
		},
		"recolor": {
			Type:     "recolor",
			Title:    "Object Recolor",
			SubTitle: "Identify and recolor objects from the image",
			Config: map[string]any{
				"recolor":  map[string]any{"prompt": "", "to": ""},
				"multiple": true,
			},
			Icon: "filter.svg",
		},
	}
}

// TransformationCreditFee is the default debit for applying any transformation.
const TransformationCreditFee = -1
