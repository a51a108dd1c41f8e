// manifest.go - cartridge descriptor parsing and effective policy merge

package arcanee

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

var cartridgeIDPattern = regexp.MustCompile(`^[a-z0-9._-]{1,255}$`)

const defaultEntry = "main.nut"

var validAspects = map[string]bool{"16:9": true, "4:3": true, "any": true}
var validPresets = map[string]bool{"low": true, "medium": true, "high": true, "ultra": true}
var validScalingModes = map[string]bool{"fit": true, "integer_nearest": true, "fill": true, "stretch": true}

// Display holds the manifest's display preferences.
type Display struct {
	Aspect             string `toml:"aspect" json:"aspect"`
	Preset             string `toml:"preset" json:"preset"`
	Scaling            string `toml:"scaling" json:"scaling"`
	AllowUserOverride  bool   `toml:"allow_user_override" json:"allow_user_override"`
}

// cbufPresetSizes maps (aspect, preset) to the console framebuffer's
// fixed pixel size. CBUF dimensions are independent of window size and
// change only when the cartridge/workbench switches preset.
var cbufPresetSizes = map[string]map[string][2]int{
	"16:9": {
		"low":    {480, 270},
		"medium": {960, 540},
		"high":   {1920, 1080},
		"ultra":  {3840, 2160},
	},
	"4:3": {
		"low":    {400, 300},
		"medium": {800, 600},
		"high":   {1600, 1200},
		"ultra":  {3200, 2400},
	},
}

// CBUFSize resolves the manifest's display aspect/preset to a concrete
// CBUF pixel size. Aspect "any" and an unset preset both fall back to the
// 16:9/medium default.
func (m *Manifest) CBUFSize() (int, int) {
	aspect := m.Display.Aspect
	if aspect == "" || aspect == "any" {
		aspect = "16:9"
	}
	preset := m.Display.Preset
	if preset == "" {
		preset = "medium"
	}
	sizes, ok := cbufPresetSizes[aspect]
	if !ok {
		sizes = cbufPresetSizes["16:9"]
	}
	wh, ok := sizes[preset]
	if !ok {
		wh = sizes["medium"]
	}
	return wh[0], wh[1]
}

// Permissions holds the manifest's requested cartridge permissions.
type Permissions struct {
	SaveStorage bool `toml:"save_storage" json:"save_storage"`
	Audio       bool `toml:"audio" json:"audio"`
	Net         bool `toml:"net" json:"net"`
	Native      bool `toml:"native" json:"native"`
}

// Caps holds the manifest's advisory resource budgets. The runtime is
// authoritative: these are clamped downward by RuntimePolicy, never up.
type Caps struct {
	AudioChannels      int `toml:"audio_channels" json:"audio_channels"`
	MaxTextures        int `toml:"max_textures" json:"max_textures"`
	MaxSurfaces        int `toml:"max_surfaces" json:"max_surfaces"`
	MaxSurfacePixels   int `toml:"max_surface_pixels" json:"max_surface_pixels"`
	MaxEntities        int `toml:"max_entities" json:"max_entities"`
	TempQuotaBytes     int `toml:"temp_quota_bytes" json:"temp_quota_bytes"`
	MaxUpdatesPerFrame int `toml:"max_updates_per_frame" json:"max_updates_per_frame"`
}

// Manifest is the parsed, validated cartridge descriptor (cartridge.toml
// or cartridge.json).
type Manifest struct {
	ID          string      `toml:"id" json:"id"`
	Title       string      `toml:"title" json:"title"`
	Version     string      `toml:"version" json:"version"`
	APIVersion  string      `toml:"api_version" json:"api_version"`
	Entry       string      `toml:"entry" json:"entry"`
	Display     Display     `toml:"display" json:"display"`
	Permissions Permissions `toml:"permissions" json:"permissions"`
	Caps        Caps        `toml:"caps" json:"caps"`
}

// supportedAPIMajor/supportedAPIMinor are the runtime's own major.minor; manifests declaring
// a higher version are rejected.
const supportedAPIMajor, supportedAPIMinor = 1, 0

// RuntimePolicy is the host-side ceiling on every advisory cap. Manifest
// caps are clamped downward against it; they never raise it.
type RuntimePolicy struct {
	MaxAudioChannels   int
	MaxTextures        int
	MaxSurfaces        int
	MaxSurfacePixels   int
	MaxEntities        int
	MaxTempQuotaBytes  int
	MaxUpdatesPerFrame int

	// StateDir is the host directory under which each cartridge's
	// save:/ and temp:/ roots are created (StateDir/saves/<id>,
	// StateDir/temp/<id>).
	StateDir string
}

// DefaultRuntimePolicy matches the constants named in the scheduler and
// resource-registry sections: tick_hz=60, max_updates_per_frame=4, plus
// generous but finite per-type pool ceilings.
func DefaultRuntimePolicy() RuntimePolicy {
	return RuntimePolicy{
		MaxAudioChannels:   64,
		MaxTextures:        4096,
		MaxSurfaces:        256,
		MaxSurfacePixels:   4096 * 4096 * 64,
		MaxEntities:        65536,
		MaxTempQuotaBytes:  64 << 20,
		MaxUpdatesPerFrame: 4,
	}
}

// EffectivePolicy is the merged result every downstream budget check
// consumes: manifest caps clamped to the runtime's own ceilings.
type EffectivePolicy struct {
	AudioChannels      int
	MaxTextures        int
	MaxSurfaces        int
	MaxSurfacePixels   int
	MaxEntities        int
	TempQuotaBytes     int
	MaxUpdatesPerFrame int
}

func clampPositive(requested, ceiling int) int {
	if requested <= 0 || requested > ceiling {
		return ceiling
	}
	return requested
}

// Merge produces the effective policy: runtime clamps downward, never up.
func (m *Manifest) Merge(rt RuntimePolicy) EffectivePolicy {
	return EffectivePolicy{
		AudioChannels:      clampPositive(m.Caps.AudioChannels, rt.MaxAudioChannels),
		MaxTextures:        clampPositive(m.Caps.MaxTextures, rt.MaxTextures),
		MaxSurfaces:        clampPositive(m.Caps.MaxSurfaces, rt.MaxSurfaces),
		MaxSurfacePixels:   clampPositive(m.Caps.MaxSurfacePixels, rt.MaxSurfacePixels),
		MaxEntities:        clampPositive(m.Caps.MaxEntities, rt.MaxEntities),
		TempQuotaBytes:     clampPositive(m.Caps.TempQuotaBytes, rt.MaxTempQuotaBytes),
		MaxUpdatesPerFrame: clampPositive(m.Caps.MaxUpdatesPerFrame, rt.MaxUpdatesPerFrame),
	}
}

// LoadManifest parses a cartridge descriptor from the given cart-root
// directory. TOML is tried first (cartridge.toml), then JSON
// (cartridge.json); it is an error if neither exists.
func LoadManifest(cartRoot string) (*Manifest, error) {
	tomlPath := filepath.Join(cartRoot, "cartridge.toml")
	jsonPath := filepath.Join(cartRoot, "cartridge.json")

	var m Manifest
	switch {
	case fileExists(tomlPath):
		if _, err := toml.DecodeFile(tomlPath, &m); err != nil {
			return nil, fmt.Errorf("manifest: parse cartridge.toml: %w", err)
		}
	case fileExists(jsonPath):
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("manifest: read cartridge.json: %w", err)
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("manifest: parse cartridge.json: %w", err)
		}
	default:
		return nil, fmt.Errorf("manifest: no cartridge.toml or cartridge.json found in %s", cartRoot)
	}

	if m.Entry == "" {
		m.Entry = defaultEntry
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if !fileExists(filepath.Join(cartRoot, filepath.FromSlash(m.Entry))) {
		return nil, fmt.Errorf("manifest: entry script %q not found", m.Entry)
	}
	return &m, nil
}

// Validate checks the closed-set and pattern constraints from the
// descriptor grammar. Unknown fields are silently ignored by the decoder
// already (toml/json unmarshal into a fixed struct).
func (m *Manifest) Validate() error {
	if !cartridgeIDPattern.MatchString(m.ID) {
		return fmt.Errorf("manifest: invalid id %q: must match [a-z0-9._-]{1,255}", m.ID)
	}
	if err := validateAPIVersion(m.APIVersion); err != nil {
		return err
	}
	if m.Display.Aspect != "" && !validAspects[m.Display.Aspect] {
		return fmt.Errorf("manifest: invalid display.aspect %q", m.Display.Aspect)
	}
	if m.Display.Preset != "" && !validPresets[m.Display.Preset] {
		return fmt.Errorf("manifest: invalid display.preset %q", m.Display.Preset)
	}
	if m.Display.Scaling != "" && !validScalingModes[m.Display.Scaling] {
		return fmt.Errorf("manifest: invalid display.scaling %q", m.Display.Scaling)
	}
	return nil
}

func validateAPIVersion(v string) error {
	if v == "" {
		return fmt.Errorf("manifest: api_version is required")
	}
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return fmt.Errorf("manifest: invalid api_version %q: expected major.minor", v)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("manifest: invalid api_version %q: %w", v, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("manifest: invalid api_version %q: %w", v, err)
	}
	if major > supportedAPIMajor || (major == supportedAPIMajor && minor > supportedAPIMinor) {
		return fmt.Errorf("manifest: api_version %q exceeds supported %d.%d", v, supportedAPIMajor, supportedAPIMinor)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
