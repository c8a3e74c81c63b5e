package imagestudio

// Provider names a backend serving one or more models.
type Provider string

const (
	ProviderGeminiAPI Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
)

// ModelRole says which GenerationClient operation a model serves.
type ModelRole string

const (
	RoleText  ModelRole = "text"
	RoleImage ModelRole = "image"
)

// ModelCapabilities describes what inputs and outputs a model accepts.
type ModelCapabilities struct {
	SupportsImageInput  bool
	SupportsImageOutput bool
	MaxInputImages      int
}

// RateLimits defines quota parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
	TokensPerDay      int // 0 = unlimited
}

// ModelInfo contains catalogue metadata for a model.
type ModelInfo struct {
	Name          string // Display name (e.g. "nano-banana")
	Provider      Provider
	APIModelName  string // Name sent to the API (e.g. "gemini-2.5-flash-image")
	Role          ModelRole
	Capabilities  ModelCapabilities
	ContextLength int
	RateLimits    RateLimits
}

// FindModel returns the entry whose API name is apiName.
func FindModel(models []ModelInfo, apiName string) (ModelInfo, bool) {
	for _, m := range models {
		if m.APIModelName == apiName {
			return m, true
		}
	}
	return ModelInfo{}, false
}
