package gemini

import "github.com/dev-x-infinite/imagestudio"

// API model names.
const (
	APIModelFlash = "gemini-2.5-flash"

	// APIModelNanoBanana is the API name for Gemini 2.5 Flash Image.
	APIModelNanoBanana = "gemini-2.5-flash-image"

	// APIModelNanoBananaPro is the API name for Gemini 3 Pro Image.
	APIModelNanoBananaPro = "gemini-3-pro-image-preview"
)

// FlashInfo is the text model used for enhancement and pose description.
var FlashInfo = imagestudio.ModelInfo{
	Name:         "gemini-flash",
	Provider:     imagestudio.ProviderGeminiAPI,
	APIModelName: APIModelFlash,
	Role:         imagestudio.RoleText,

	Capabilities: imagestudio.ModelCapabilities{
		SupportsImageInput: true,
		MaxInputImages:     3000,
	},

	ContextLength: 1048576,

	RateLimits: imagestudio.RateLimits{
		TokensPerMinute:   1000000,
		RequestsPerMinute: 1000,
	},
}

// NanoBananaInfo is Gemini 2.5 Flash Image, the default image model.
var NanoBananaInfo = imagestudio.ModelInfo{
	Name:         "nano-banana",
	Provider:     imagestudio.ProviderGeminiAPI,
	APIModelName: APIModelNanoBanana,
	Role:         imagestudio.RoleImage,

	Capabilities: imagestudio.ModelCapabilities{
		SupportsImageInput:  true,
		SupportsImageOutput: true,
		MaxInputImages:      3,
	},

	ContextLength: 32768,

	RateLimits: imagestudio.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
		TokensPerDay:      1000000000,
	},
}

// NanoBananaProInfo is Gemini 3 Pro Image.
var NanoBananaProInfo = imagestudio.ModelInfo{
	Name:         "nano-banana-pro",
	Provider:     imagestudio.ProviderGeminiAPI,
	APIModelName: APIModelNanoBananaPro,
	Role:         imagestudio.RoleImage,

	Capabilities: imagestudio.ModelCapabilities{
		SupportsImageInput:  true,
		SupportsImageOutput: true,
		MaxInputImages:      14,
	},

	ContextLength: 1048576,

	RateLimits: imagestudio.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 360,
		TokensPerDay:      1000000000,
	},
}
