package io

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"spikenet/internal/scapeid"
)

var (
	ErrSensorExists     = errors.New("sensor already registered")
	ErrSensorNotFound   = errors.New("sensor not found")
	ErrActuatorExists   = errors.New("actuator already registered")
	ErrActuatorNotFound = errors.New("actuator not found")
	ErrIncompatible     = errors.New("component incompatible with scape")
)

type SensorFactory func() Sensor

type ActuatorFactory func() Actuator

// SensorSpec registers a sensor factory. An empty Scapes list makes the
// sensor available to every scape.
type SensorSpec struct {
	Name    string
	Factory SensorFactory
	Scapes  []string
}

type ActuatorSpec struct {
	Name    string
	Factory ActuatorFactory
	Scapes  []string
}

var sensorRegistry = struct {
	mu sync.RWMutex
	m  map[string]SensorSpec
}{
	m: make(map[string]SensorSpec),
}

var actuatorRegistry = struct {
	mu sync.RWMutex
	m  map[string]ActuatorSpec
}{
	m: make(map[string]ActuatorSpec),
}

func RegisterSensor(spec SensorSpec) error {
	if spec.Name == "" {
		return errors.New("sensor name is required")
	}
	if spec.Factory == nil {
		return errors.New("sensor factory is required")
	}

	sensorRegistry.mu.Lock()
	defer sensorRegistry.mu.Unlock()

	if _, exists := sensorRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrSensorExists, spec.Name)
	}
	sensorRegistry.m[spec.Name] = spec
	return nil
}

func ResolveSensor(name, scape string) (Sensor, error) {
	sensorRegistry.mu.RLock()
	spec, ok := sensorRegistry.m[name]
	sensorRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, name)
	}
	if !compatible(spec.Scapes, scape) {
		return nil, fmt.Errorf("%w: sensor=%s scape=%s", ErrIncompatible, name, scape)
	}
	return spec.Factory(), nil
}

// ListSensorsForScape returns the compatible sensor names in sorted order,
// which is also the order their values are fed to the sensor layer.
func ListSensorsForScape(scape string) []string {
	sensorRegistry.mu.RLock()
	defer sensorRegistry.mu.RUnlock()

	names := make([]string, 0, len(sensorRegistry.m))
	for name, spec := range sensorRegistry.m {
		if compatible(spec.Scapes, scape) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func RegisterActuator(spec ActuatorSpec) error {
	if spec.Name == "" {
		return errors.New("actuator name is required")
	}
	if spec.Factory == nil {
		return errors.New("actuator factory is required")
	}

	actuatorRegistry.mu.Lock()
	defer actuatorRegistry.mu.Unlock()

	if _, exists := actuatorRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrActuatorExists, spec.Name)
	}
	actuatorRegistry.m[spec.Name] = spec
	return nil
}

func ResolveActuator(name, scape string) (Actuator, error) {
	actuatorRegistry.mu.RLock()
	spec, ok := actuatorRegistry.m[name]
	actuatorRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActuatorNotFound, name)
	}
	if !compatible(spec.Scapes, scape) {
		return nil, fmt.Errorf("%w: actuator=%s scape=%s", ErrIncompatible, name, scape)
	}
	return spec.Factory(), nil
}

func ListActuatorsForScape(scape string) []string {
	actuatorRegistry.mu.RLock()
	defer actuatorRegistry.mu.RUnlock()

	names := make([]string, 0, len(actuatorRegistry.m))
	for name, spec := range actuatorRegistry.m {
		if compatible(spec.Scapes, scape) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func compatible(scapes []string, scape string) bool {
	if len(scapes) == 0 {
		return true
	}
	normalized := scapeid.Normalize(scape)
	for _, s := range scapes {
		if s == normalized {
			return true
		}
	}
	return false
}
