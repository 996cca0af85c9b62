package config

const (
	defaultStorePath           = "~/.local/share/rigconvert/assets.db"
	defaultLogDir              = "~/.local/share/rigconvert/logs"
	defaultOutputRoot          = "Assets/Converted"
	defaultTargetShader        = "VRChat/Mobile/Toon Lit"
	defaultTextureMaxDimension = 1024
	defaultBrightnessScale     = 1.0
	defaultWorkers             = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultRetentionDays       = 30
	maxTextureDimension        = 8192
)

var defaultApprovedShaders = []string{
	"VRChat/Mobile/Toon Lit",
	"VRChat/Mobile/Toon Standard",
	"VRChat/Mobile/Standard Lite",
	"VRChat/Mobile/Diffuse",
	"VRChat/Mobile/Bumped Diffuse",
	"VRChat/Mobile/Bumped Mapped Specular",
	"VRChat/Mobile/MatCap Lit",
	"VRChat/Mobile/Particles/Additive",
	"VRChat/Mobile/Particles/Multiply",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorePath:  defaultStorePath,
			OutputRoot: defaultOutputRoot,
			LogDir:     defaultLogDir,
		},
		Conversion: Conversion{
			TargetShader:        defaultTargetShader,
			ApprovedShaders:     append([]string(nil), defaultApprovedShaders...),
			TextureMaxDimension: defaultTextureMaxDimension,
			BrightnessScale:     defaultBrightnessScale,
			BakeTextures:        true,
			Workers:             defaultWorkers,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RunLogs:       true,
			RetentionDays: defaultRetentionDays,
		},
	}
}
