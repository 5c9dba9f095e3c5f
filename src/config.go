package dnbcore

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the on-disk configuration tree: a processor section,
// then filters/detectors/triggers wired together by string id. Parsing
// the YAML never fails on unknown fields; NewSignalProcessor is what
// surfaces ConfigError for missing or malformed ones.
type Config struct {
	Processor ProcessorConfig `yaml:"processor"`
	Filters   FiltersConfig   `yaml:"filters"`
	Detectors DetectorsConfig `yaml:"detectors"`
	Triggers  TriggersConfig  `yaml:"triggers"`
}

type ProcessorConfig struct {
	FS                  float64 `yaml:"fs"`
	Channel             int     `yaml:"channel"`
	Verbose             bool    `yaml:"verbose"`
	EnableDebugLogging  bool    `yaml:"enable_debug_logging"`
}

type FiltersConfig struct {
	BandpassFilters []BandpassFilterConfig `yaml:"bandpass_filters"`
}

type BandpassFilterConfig struct {
	ID    string  `yaml:"id"`
	FLow  float64 `yaml:"f_low"`
	FHigh float64 `yaml:"f_high"`
}

type DetectorsConfig struct {
	WavePeakDetectors  []WavePeakDetectorConfig  `yaml:"wave_peak_detectors"`
	ThresholdDetectors []ThresholdDetectorConfig `yaml:"threshold_detectors"`
}

type WavePeakDetectorConfig struct {
	ID                    string   `yaml:"id"`
	FilterID              string   `yaml:"filter_id"`
	ZScoreThreshold       float64  `yaml:"z_score_threshold"`
	SinusoidnessThreshold float64  `yaml:"sinusoidness_threshold"`
	CheckSinusoidness     bool     `yaml:"check_sinusoidness"`
	WavePolarity          string   `yaml:"wave_polarity"`
	MinWaveLengthMs       *float64 `yaml:"min_wave_length_ms"`
	MaxWaveLengthMs       *float64 `yaml:"max_wave_length_ms"`
}

type ThresholdDetectorConfig struct {
	ID          string  `yaml:"id"`
	FilterID    string  `yaml:"filter_id"`
	Threshold   float64 `yaml:"threshold"`
	BufferSize  int     `yaml:"buffer_size"`
	Sensitivity float64 `yaml:"sensitivity"`
}

type TriggersConfig struct {
	PulseTriggers []PulseTriggerConfig `yaml:"pulse_triggers"`
}

type PulseTriggerConfig struct {
	ID                   string  `yaml:"id"`
	ActivationDetectorID string  `yaml:"activation_detector_id"`
	InhibitionDetectorID string  `yaml:"inhibition_detector_id"`
	PulseCooldownMs      float64 `yaml:"pulse_cooldown_ms"`
	InhibitionCooldownMs float64 `yaml:"inhibition_cooldown_ms"`
}

// LoadConfigFile reads and parses a YAML configuration file. It reports
// ErrIO if the file can't be read and ErrConfigInvalid if it can't be
// parsed as YAML; cross-reference and range validation happen later, in
// NewSignalProcessor.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr("config.file", "could not read config file %q: %v", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configErr("config.yaml", "could not parse config file %q: %v", path, err)
	}
	return &cfg, nil
}
