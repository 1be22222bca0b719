package io

import "context"

// Sensor produces a fixed-width slice of the network's sensor layer input.
type Sensor interface {
	Name() string
	Width() int
	Read(ctx context.Context) ([]float64, error)
}

// Actuator consumes a contiguous slice of the output layer spikes.
type Actuator interface {
	Name() string
	Write(ctx context.Context, values []float64) error
}

// ScalarSensorSetter lets a scape push the next observation into a sensor.
type ScalarSensorSetter interface {
	Set(value float64)
}

// SnapshotActuator exposes the spikes most recently written to an actuator.
type SnapshotActuator interface {
	Last() []float64
}
