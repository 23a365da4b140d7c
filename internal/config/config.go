package config

import "time"

// Scene defaults. Durations are measured on the scene clock, which only
// advances while the scene is visible.
const (
	DefaultAmbientCount     = 200
	DefaultCaption          = "KOVA PARKER"
	DefaultRevealStart      = 2000 * time.Millisecond
	DefaultRevealDuration   = 4000 * time.Millisecond
	DefaultRevealJitter     = 250 * time.Millisecond
	DefaultSampleGap        = 6
	DefaultAlphaThreshold   = 128
	DefaultMaxFontSize      = 110.0
	DefaultFontWidthDivisor = 7.0
	DefaultStreakPoolSize   = 5
	DefaultStreakMinGap     = 8000 * time.Millisecond
	DefaultStreakMaxGap     = 12000 * time.Millisecond
	DefaultBackground       = "#000008"
	DefaultStarColor        = "#FFFADC"
)

// Terminal rendering
const (
	DefaultFPS        = 60
	DefaultCellWidth  = 8.0  // Logical pixels per terminal column
	DefaultCellHeight = 16.0 // Logical pixels per terminal row (two sub-pixels)
	MaxTermWidth      = 240  // Max columns rendered; larger terminals get a border
	MaxTermHeight     = 80   // Max rows rendered
)

// Network hosts
const (
	DefaultSSHHost     = "::"
	DefaultSSHPort     = "2222"
	DefaultHostKeyPath = "/app/keys/host_key"
	DefaultWebHost     = "0.0.0.0"
	DefaultWebPort     = "8080"
	DefaultWebWidth    = 1280
	DefaultWebHeight   = 720
)

// Scene holds the tunables of the simulation itself.
type Scene struct {
	AmbientCount     int
	Caption          string
	RevealStart      time.Duration
	RevealDuration   time.Duration
	RevealJitter     time.Duration // Per-point delay jitter, applied as +/- this value
	SampleGap        int
	AlphaThreshold   uint8
	MaxFontSize      float64
	FontWidthDivisor float64
	StreakPoolSize   int
	StreakMinGap     time.Duration
	StreakMaxGap     time.Duration
	Background       string
	StarColor        string
}

// Terminal configures the terminal hosts (local and SSH).
type Terminal struct {
	FPS        int
	CellWidth  float64
	CellHeight float64
	// ScrollThreshold is the virtual scroll offset, in viewport heights,
	// past which the scene becomes visible. Zero shows it immediately.
	ScrollThreshold float64
	LogPath         string
}

// SSH configures the SSH host.
type SSH struct {
	Host        string
	Port        string
	HostKeyPath string
}

// Web configures the HTTP frame host.
type Web struct {
	Host   string
	Port   string
	Width  int
	Height int
	FPS    int
}

// Config is the complete runtime configuration.
type Config struct {
	Scene    Scene
	Terminal Terminal
	SSH      SSH
	Web      Web
}

// DefaultScene returns the scene tunables with their default values.
func DefaultScene() Scene {
	return Scene{
		AmbientCount:     DefaultAmbientCount,
		Caption:          DefaultCaption,
		RevealStart:      DefaultRevealStart,
		RevealDuration:   DefaultRevealDuration,
		RevealJitter:     DefaultRevealJitter,
		SampleGap:        DefaultSampleGap,
		AlphaThreshold:   DefaultAlphaThreshold,
		MaxFontSize:      DefaultMaxFontSize,
		FontWidthDivisor: DefaultFontWidthDivisor,
		StreakPoolSize:   DefaultStreakPoolSize,
		StreakMinGap:     DefaultStreakMinGap,
		StreakMaxGap:     DefaultStreakMaxGap,
		Background:       DefaultBackground,
		StarColor:        DefaultStarColor,
	}
}

// Load builds the configuration from defaults and environment overrides.
func Load() Config {
	scene := DefaultScene()
	scene.AmbientCount = nonNegative(GetEnvInt("STARFIELD_STARS", scene.AmbientCount), scene.AmbientCount)
	scene.Caption = GetEnv("STARFIELD_CAPTION", scene.Caption)
	scene.RevealStart = GetEnvDuration("STARFIELD_REVEAL_START", scene.RevealStart)
	scene.RevealDuration = GetEnvDuration("STARFIELD_REVEAL_DURATION", scene.RevealDuration)
	scene.SampleGap = positive(GetEnvInt("STARFIELD_SAMPLE_GAP", scene.SampleGap), scene.SampleGap)
	scene.StreakPoolSize = nonNegative(GetEnvInt("STARFIELD_STREAKS", scene.StreakPoolSize), scene.StreakPoolSize)
	scene.StreakMinGap = GetEnvDuration("STARFIELD_STREAK_MIN_GAP", scene.StreakMinGap)
	scene.StreakMaxGap = GetEnvDuration("STARFIELD_STREAK_MAX_GAP", scene.StreakMaxGap)
	if scene.StreakMaxGap < scene.StreakMinGap {
		scene.StreakMaxGap = scene.StreakMinGap
	}
	if threshold := GetEnvInt("STARFIELD_ALPHA_THRESHOLD", int(scene.AlphaThreshold)); threshold >= 0 && threshold <= 255 {
		scene.AlphaThreshold = uint8(threshold)
	}

	return Config{
		Scene: scene,
		Terminal: Terminal{
			FPS:             positive(GetEnvInt("STARFIELD_FPS", DefaultFPS), DefaultFPS),
			CellWidth:       DefaultCellWidth,
			CellHeight:      DefaultCellHeight,
			ScrollThreshold: GetEnvFloat("STARFIELD_SCROLL_THRESHOLD", 0),
			LogPath:         GetEnv("STARFIELD_LOG", ""),
		},
		SSH: SSH{
			Host:        GetEnv("SSH_HOST", DefaultSSHHost),
			Port:        GetEnv("SSH_PORT", DefaultSSHPort),
			HostKeyPath: GetEnv("SSH_HOST_KEY", DefaultHostKeyPath),
		},
		Web: Web{
			Host:   GetEnv("WEB_HOST", DefaultWebHost),
			Port:   GetEnv("WEB_PORT", DefaultWebPort),
			Width:  positive(GetEnvInt("WEB_WIDTH", DefaultWebWidth), DefaultWebWidth),
			Height: positive(GetEnvInt("WEB_HEIGHT", DefaultWebHeight), DefaultWebHeight),
			FPS:    positive(GetEnvInt("WEB_FPS", 30), 30),
		},
	}
}

// FrameTime returns the target duration of one frame.
func (t Terminal) FrameTime() time.Duration {
	return time.Second / time.Duration(t.FPS)
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func nonNegative(v, fallback int) int {
	if v < 0 {
		return fallback
	}
	return v
}
