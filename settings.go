// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package lenia

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used by DefaultSettings.
const (
	DefaultGridSize         = 256
	DefaultWorkgroupSize    = 8
	DefaultStepPeriod       = 70 * time.Millisecond
	DefaultDisplayFactor    = 4
	DefaultInitEntryPoint   = "init"
	DefaultUpdateEntryPoint = "update"
)

// Extent is a 2D size in cells.
type Extent struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// String returns the extent as WxH.
func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Settings configures a simulation run.
//
// The workgroup size must match the @workgroup_size declared by the kernel
// entry points. The bundled kernel uses 8x8.
type Settings struct {
	// Grid is the size of both storage surfaces. Immutable after New.
	Grid Extent `yaml:"grid_size"`

	// WorkgroupSize is the edge of the square compute workgroup.
	WorkgroupSize uint32 `yaml:"workgroup_size"`

	// StepPeriod is the wall-clock time between simulation steps. In YAML
	// it is a duration string ("70ms") or a number of seconds (0.07).
	StepPeriod time.Duration `yaml:"step_period"`

	// TimeScale multiplies frame deltas before they reach the clock.
	TimeScale float64 `yaml:"time_scale"`

	// Pause stops the clock. Frames keep presenting.
	Pause bool `yaml:"pause"`

	// DisplayFactor is the number of screen pixels per cell edge.
	DisplayFactor int `yaml:"display_factor"`

	// KernelPath is a WGSL file to load instead of the bundled kernel.
	KernelPath string `yaml:"kernel"`

	// InitEntryPoint and UpdateEntryPoint name the two kernel programs.
	InitEntryPoint   string `yaml:"init_entry_point"`
	UpdateEntryPoint string `yaml:"update_entry_point"`
}

// DefaultSettings returns the settings of a standard run.
func DefaultSettings() Settings {
	return Settings{
		Grid:             Extent{Width: DefaultGridSize, Height: DefaultGridSize},
		WorkgroupSize:    DefaultWorkgroupSize,
		StepPeriod:       DefaultStepPeriod,
		TimeScale:        1,
		DisplayFactor:    DefaultDisplayFactor,
		InitEntryPoint:   DefaultInitEntryPoint,
		UpdateEntryPoint: DefaultUpdateEntryPoint,
	}
}

// LoadSettings reads YAML settings from path. Keys missing from the file
// keep their DefaultSettings values. The result is validated.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("lenia: read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML settings on top of DefaultSettings and
// validates the result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("lenia: parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// UnmarshalYAML decodes settings, accepting step_period as seconds.
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			if key.Value != "step_period" || val.Kind != yaml.ScalarNode {
				continue
			}
			if tag := val.ShortTag(); tag != "!!int" && tag != "!!float" {
				continue
			}
			seconds, err := strconv.ParseFloat(val.Value, 64)
			if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
				return fmt.Errorf("line %d: step_period %q is not a number of seconds", val.Line, val.Value)
			}
			val.Value = time.Duration(math.Round(seconds * float64(time.Second))).String()
			val.Tag = "!!str"
		}
	}
	type plain Settings
	return value.Decode((*plain)(s))
}

// Validate reports configuration errors. It is checked once at startup.
func (s Settings) Validate() error {
	if s.WorkgroupSize == 0 {
		return fmt.Errorf("%w: workgroup size must be positive", ErrInvalidSettings)
	}
	if s.Grid.Width == 0 || s.Grid.Height == 0 {
		return fmt.Errorf("%w: grid %s is empty", ErrInvalidSettings, s.Grid)
	}
	if s.Grid.Width%s.WorkgroupSize != 0 || s.Grid.Height%s.WorkgroupSize != 0 {
		return fmt.Errorf("%w: grid %s, workgroup %d", ErrGridNotAligned, s.Grid, s.WorkgroupSize)
	}
	if s.StepPeriod <= 0 {
		return fmt.Errorf("%w: step period %v must be positive", ErrInvalidSettings, s.StepPeriod)
	}
	if s.TimeScale < 0 || math.IsNaN(s.TimeScale) || math.IsInf(s.TimeScale, 0) {
		return fmt.Errorf("%w: time scale %v", ErrInvalidSettings, s.TimeScale)
	}
	if s.DisplayFactor < 1 {
		return fmt.Errorf("%w: display factor %d must be at least 1", ErrInvalidSettings, s.DisplayFactor)
	}
	if s.InitEntryPoint == "" || s.UpdateEntryPoint == "" {
		return fmt.Errorf("%w: entry points must be named", ErrInvalidSettings)
	}
	return nil
}

// DispatchSize returns the workgroup counts covering the grid.
func (s Settings) DispatchSize() [3]uint32 {
	wg := s.WorkgroupSize
	return [3]uint32{
		(s.Grid.Width + wg - 1) / wg,
		(s.Grid.Height + wg - 1) / wg,
		1,
	}
}

// DisplaySize returns the presented image size in pixels.
func (s Settings) DisplaySize() (width, height int) {
	return int(s.Grid.Width) * s.DisplayFactor, int(s.Grid.Height) * s.DisplayFactor
}
