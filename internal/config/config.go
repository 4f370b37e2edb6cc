package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SyntheticConfig controls the randomized occupancy fallback used when a
// hospital has neither a live reading nor a cache entry.
type SyntheticConfig struct {
	Enabled    bool
	PeopleMin  int
	PeopleMax  int
	MinutesMin int
	MinutesMax int
}

// LiveCameraConfig describes the optional live camera sources and which
// hospital they belong to.
type LiveCameraConfig struct {
	HospitalID       string
	CameraURLs       []string
	PerPersonMinutes int
}

// ServiceConfig holds all configuration for the hospital service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	GeoAPIKey    string
	Synthetic    SyntheticConfig
	Live         LiveCameraConfig
	VisionURL    string
	KafkaBrokers []string
}

// Load reads configuration from HOSPITAL_-prefixed environment variables.
// The geo provider API key is required; the process refuses to start
// without it.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("HOSPITAL")
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("geo_api_key", "")
	v.SetDefault("synthetic_enabled", true)
	v.SetDefault("synthetic_people_min", 5)
	v.SetDefault("synthetic_people_max", 30)
	v.SetDefault("synthetic_minutes_min", 5)
	v.SetDefault("synthetic_minutes_max", 15)
	v.SetDefault("live_hospital_id", "")
	v.SetDefault("live_camera_urls", "")
	v.SetDefault("live_per_person_minutes", 10)
	v.SetDefault("vision_url", "")
	v.SetDefault("kafka_brokers", "")

	cfg := &ServiceConfig{
		Port:      v.GetString("service_port"),
		AppEnv:    v.GetString("app_env"),
		GeoAPIKey: v.GetString("geo_api_key"),
		Synthetic: SyntheticConfig{
			Enabled:    v.GetBool("synthetic_enabled"),
			PeopleMin:  v.GetInt("synthetic_people_min"),
			PeopleMax:  v.GetInt("synthetic_people_max"),
			MinutesMin: v.GetInt("synthetic_minutes_min"),
			MinutesMax: v.GetInt("synthetic_minutes_max"),
		},
		Live: LiveCameraConfig{
			HospitalID:       v.GetString("live_hospital_id"),
			CameraURLs:       splitList(v.GetString("live_camera_urls")),
			PerPersonMinutes: v.GetInt("live_per_person_minutes"),
		},
		VisionURL:    v.GetString("vision_url"),
		KafkaBrokers: splitList(v.GetString("kafka_brokers")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	if c.GeoAPIKey == "" {
		return fmt.Errorf("HOSPITAL_GEO_API_KEY is required")
	}
	if c.Synthetic.PeopleMin < 0 || c.Synthetic.PeopleMax < c.Synthetic.PeopleMin {
		return fmt.Errorf("invalid synthetic people range [%d,%d]",
			c.Synthetic.PeopleMin, c.Synthetic.PeopleMax)
	}
	if c.Synthetic.MinutesMin < 1 || c.Synthetic.MinutesMax > 60 ||
		c.Synthetic.MinutesMax < c.Synthetic.MinutesMin {
		return fmt.Errorf("invalid synthetic minutes range [%d,%d], must stay within [1,60]",
			c.Synthetic.MinutesMin, c.Synthetic.MinutesMax)
	}
	if c.Live.PerPersonMinutes < 1 || c.Live.PerPersonMinutes > 60 {
		return fmt.Errorf("live per-person minutes must be between 1 and 60, got %d",
			c.Live.PerPersonMinutes)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
