// Package simulation manages the project's simulation duration settings and
// named profiles.
package simulation

import (
	"fmt"
	"path/filepath"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
)

// SupportedTimePrefixes are the accepted simulation time units.
var SupportedTimePrefixes = []string{"fs", "ps", "ns", "us", "ms", "sec"}

// Built-in profile names.
const (
	ProfileQuick    = "quick"
	ProfileStandard = "standard"
	ProfileExtended = "extended"
)

// Manager owns the simulation settings sections of the configuration.
type Manager struct {
	Store *config.Store
	Log   *applog.Logger
}

func New(store *config.Store) *Manager {
	logPath := ""
	if dir := store.Config.LogsDir(); dir != "" {
		logPath = filepath.Join(dir, "simulation_manager.log")
	}
	m := &Manager{Store: store, Log: applog.New(logPath)}
	applog.RegisterFile(store, "simulation_manager", m.Log)
	m.ensureConfig()
	return m
}

func (m *Manager) cfg() *config.ProjectConfig {
	return m.Store.Config
}

// ensureConfig lazily creates the simulation_configuration section with
// defaults, without clobbering existing settings.
func (m *Manager) ensureConfig() {
	if m.cfg().SimulationConfig != nil {
		return
	}
	defaults := config.SimulationSettings{SimulationTime: 1000, TimePrefix: "ns"}
	m.cfg().SimulationConfig = &config.SimulationConfig{
		DefaultSettings:       defaults,
		CurrentSettings:       defaults,
		SupportedTimePrefixes: append([]string(nil), SupportedTimePrefixes...),
		Profiles: map[string]config.SimulationProfile{
			ProfileQuick:    {SimulationTime: 100, TimePrefix: "ns", Description: "Quick test - 100ns"},
			ProfileStandard: {SimulationTime: 1000, TimePrefix: "ns", Description: "Standard test - 1us"},
			ProfileExtended: {SimulationTime: 10000, TimePrefix: "ns", Description: "Extended test - 10us"},
		},
	}
	if err := m.Store.Save(); err != nil {
		m.Log.Error("failed to persist default simulation configuration: %v", err)
	}
}

// PrefixSupported validates a time unit against the supported set.
func (m *Manager) PrefixSupported(prefix string) bool {
	supported := SupportedTimePrefixes
	if sc := m.cfg().SimulationConfig; sc != nil && len(sc.SupportedTimePrefixes) > 0 {
		supported = sc.SupportedTimePrefixes
	}
	for _, p := range supported {
		if p == prefix {
			return true
		}
	}
	return false
}

// SetSimulationLength records the duration and time unit for subsequent
// simulation runs. Returns false on an unsupported prefix or a non-positive
// duration.
func (m *Manager) SetSimulationLength(simulationTime int, timePrefix string) bool {
	if simulationTime <= 0 {
		m.Log.Error("simulation time must be positive, got %d", simulationTime)
		return false
	}
	if !m.PrefixSupported(timePrefix) {
		m.Log.Error("time prefix %q is not supported, supported prefixes are %v", timePrefix, SupportedTimePrefixes)
		return false
	}
	settings := config.SimulationSettings{SimulationTime: simulationTime, TimePrefix: timePrefix}
	m.cfg().SimulationConfig.CurrentSettings = settings
	// Mirror into the legacy flat section for older consumers.
	m.cfg().SimulationSettings = &settings
	if err := m.Store.Save(); err != nil {
		m.Log.Error("failed to persist simulation settings: %v", err)
		return false
	}
	m.Log.Info("updated simulation settings: %d%s", simulationTime, timePrefix)
	return true
}

// CurrentSettings returns the active simulation duration and unit.
func (m *Manager) CurrentSettings() (int, string) {
	cur := m.cfg().SimulationConfig.CurrentSettings
	if cur.TimePrefix == "" {
		return 1000, "ns"
	}
	return cur.SimulationTime, cur.TimePrefix
}

// ApplyProfile activates a built-in or user profile by name.
func (m *Manager) ApplyProfile(name string) bool {
	sc := m.cfg().SimulationConfig
	profile, ok := sc.Profiles[name]
	if !ok {
		profile, ok = sc.UserProfiles[name]
	}
	if !ok {
		m.Log.Error("unknown simulation profile %q", name)
		return false
	}
	if !m.SetSimulationLength(profile.SimulationTime, profile.TimePrefix) {
		return false
	}
	m.Log.Info("applied simulation profile %q: %d%s", name, profile.SimulationTime, profile.TimePrefix)
	return true
}

// CreateUserProfile stores a named user profile. The name must not collide
// with a built-in profile.
func (m *Manager) CreateUserProfile(name string, simulationTime int, timePrefix, description string) bool {
	sc := m.cfg().SimulationConfig
	if _, exists := sc.Profiles[name]; exists {
		m.Log.Error("profile name %q collides with a built-in profile", name)
		return false
	}
	if simulationTime <= 0 {
		m.Log.Error("simulation time must be positive, got %d", simulationTime)
		return false
	}
	if !m.PrefixSupported(timePrefix) {
		m.Log.Error("unsupported time prefix: %s", timePrefix)
		return false
	}
	if description == "" {
		description = fmt.Sprintf("User profile - %d%s", simulationTime, timePrefix)
	}
	if sc.UserProfiles == nil {
		sc.UserProfiles = map[string]config.SimulationProfile{}
	}
	sc.UserProfiles[name] = config.SimulationProfile{
		SimulationTime: simulationTime,
		TimePrefix:     timePrefix,
		Description:    description,
	}
	if err := m.Store.Save(); err != nil {
		m.Log.Error("failed to persist user profile %q: %v", name, err)
		return false
	}
	m.Log.Info("created user simulation profile %q: %d%s", name, simulationTime, timePrefix)
	return true
}
