package domain

// CharacterAnalysis is the structured character sheet produced by the
// external image-understanding service. Fields mirror the categories the
// analysis prompt asks for; anything the model cannot see comes back as
// "not visible" rather than being omitted.
type CharacterAnalysis struct {
	Identity    IdentityTraits  `json:"identity"`
	Body        BodyTraits      `json:"body"`
	Face        FaceTraits      `json:"face"`
	Eyes        EyeTraits       `json:"eyes"`
	Hair        HairTraits      `json:"hair"`
	Clothing    ClothingTraits  `json:"clothing"`
	Footwear    FootwearTraits  `json:"footwear"`
	Accessories AccessoryTraits `json:"accessories"`
	PhotoStyle  PhotoStyle      `json:"photo_style"`
	Metadata    AnalysisMeta    `json:"metadata"`
}

// IdentityTraits describes who the character appears to be.
type IdentityTraits struct {
	Name        string `json:"name"`
	Age         string `json:"age"`
	Gender      string `json:"gender"`
	Occupation  string `json:"occupation"`
	Personality string `json:"personality"`
	Background  string `json:"background"`
}

// BodyTraits describes the character's physique.
type BodyTraits struct {
	Height          string   `json:"height"`
	Weight          string   `json:"weight"`
	BodyType        string   `json:"body_type"`
	Characteristics []string `json:"characteristics"`
	Marks           []string `json:"marks"`
}

// FaceTraits describes the character's face.
type FaceTraits struct {
	Shape           string   `json:"shape"`
	Characteristics []string `json:"characteristics"`
	Expression      string   `json:"expression"`
	Details         []string `json:"details"`
}

// EyeTraits describes the character's eyes.
type EyeTraits struct {
	Color           string   `json:"color"`
	Shape           string   `json:"shape"`
	Size            string   `json:"size"`
	Characteristics []string `json:"characteristics"`
	Expression      string   `json:"expression"`
}

// HairTraits describes the character's hair.
type HairTraits struct {
	Color           string   `json:"color"`
	Style           string   `json:"style"`
	Length          string   `json:"length"`
	Texture         string   `json:"texture"`
	Characteristics []string `json:"characteristics"`
}

// ClothingTraits describes what the character wears.
type ClothingTraits struct {
	Type        string   `json:"type"`
	Color       string   `json:"color"`
	Style       string   `json:"style"`
	Details     []string `json:"details"`
	Accessories []string `json:"accessories"`
}

// FootwearTraits describes the character's footwear.
type FootwearTraits struct {
	Type            string   `json:"type"`
	Color           string   `json:"color"`
	Style           string   `json:"style"`
	Characteristics []string `json:"characteristics"`
}

// AccessoryTraits describes worn accessories.
type AccessoryTraits struct {
	Types       []string `json:"types"`
	Details     []string `json:"details"`
	Positioning []string `json:"positioning"`
}

// PhotoStyle describes the photographic qualities of the image.
type PhotoStyle struct {
	Lighting    string `json:"lighting"`
	Angle       string `json:"angle"`
	Composition string `json:"composition"`
	Environment string `json:"environment"`
	Quality     string `json:"quality"`
}

// AnalysisMeta carries provenance information about the analysis run.
type AnalysisMeta struct {
	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// ProcessedAt is the provider-reported processing timestamp.
	ProcessedAt string `json:"processed_at"`

	// Model identifies the model version that produced the analysis.
	Model string `json:"model"`
}
