package io

import (
	"context"
	"sync"
)

const (
	XORInputLeftSensorName   = "xor_input_left"
	XORInputRightSensorName  = "xor_input_right"
	XOROutputActuatorName    = "xor_output"
	BeaconLeftSensorName     = "beacon_left"
	BeaconRightSensorName    = "beacon_right"
	BeaconTurnActuatorName   = "beacon_turn"
	ScalarInputSensorName    = "scalar_input"
	ScalarOutputActuatorName = "scalar_output"
)

// ScalarInputSensor holds one observation value set by a scape.
type ScalarInputSensor struct {
	name string

	mu    sync.RWMutex
	value float64
}

func NewScalarInputSensor(name string, initial float64) *ScalarInputSensor {
	if name == "" {
		name = ScalarInputSensorName
	}
	return &ScalarInputSensor{name: name, value: initial}
}

func (s *ScalarInputSensor) Name() string {
	return s.name
}

func (s *ScalarInputSensor) Width() int {
	return 1
}

func (s *ScalarInputSensor) Read(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []float64{s.value}, nil
}

func (s *ScalarInputSensor) Set(value float64) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

// OutputActuator records the last spike vector written by a cortex.
type OutputActuator struct {
	name string

	mu   sync.RWMutex
	last []float64
}

func NewOutputActuator(name string) *OutputActuator {
	if name == "" {
		name = ScalarOutputActuatorName
	}
	return &OutputActuator{name: name}
}

func (a *OutputActuator) Name() string {
	return a.name
}

func (a *OutputActuator) Write(_ context.Context, values []float64) error {
	a.mu.Lock()
	a.last = append([]float64(nil), values...)
	a.mu.Unlock()
	return nil
}

func (a *OutputActuator) Last() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.last...)
}

func init() {
	initializeDefaultComponents()
}

func initializeDefaultComponents() {
	sensors := []SensorSpec{
		{Name: XORInputLeftSensorName, Scapes: []string{"xor"}},
		{Name: XORInputRightSensorName, Scapes: []string{"xor"}},
		{Name: BeaconLeftSensorName, Scapes: []string{"beacon"}},
		{Name: BeaconRightSensorName, Scapes: []string{"beacon"}},
	}
	for _, spec := range sensors {
		name := spec.Name
		spec.Factory = func() Sensor { return NewScalarInputSensor(name, 0) }
		if err := RegisterSensor(spec); err != nil {
			panic(err)
		}
	}

	actuators := []ActuatorSpec{
		{Name: XOROutputActuatorName, Scapes: []string{"xor"}},
		{Name: BeaconTurnActuatorName, Scapes: []string{"beacon"}},
	}
	for _, spec := range actuators {
		name := spec.Name
		spec.Factory = func() Actuator { return NewOutputActuator(name) }
		if err := RegisterActuator(spec); err != nil {
			panic(err)
		}
	}
}
