// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Resolver states counted by RecordTransition.
const (
	StateDone        = "done"
	StateError       = "error"
	StateRequestCode = "request_code"
	StateResolveCode = "resolve_code"
	StateCall        = "call"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Backend RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Action resolver transitions
	doneTotal        atomic.Int64
	errorTotal       atomic.Int64
	requestCodeTotal atomic.Int64
	resolveCodeTotal atomic.Int64
	callTotal        atomic.Int64

	// Device requests answered by an authenticator
	deviceRequestsTotal atomic.Int64
	deviceErrorsTotal   atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records a backend call with its duration and success status.
func (m *Metrics) RecordRPCCall(duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}
}

// RecordTransition records one action resolver step in the given state.
// Unknown states are ignored.
func (m *Metrics) RecordTransition(state string) {
	switch state {
	case StateDone:
		m.doneTotal.Add(1)
	case StateError:
		m.errorTotal.Add(1)
	case StateRequestCode:
		m.requestCodeTotal.Add(1)
	case StateResolveCode:
		m.resolveCodeTotal.Add(1)
	case StateCall:
		m.callTotal.Add(1)
	}
}

// RecordDeviceRequest records a device request and whether it failed.
func (m *Metrics) RecordDeviceRequest(err error) {
	m.deviceRequestsTotal.Add(1)
	if err != nil {
		m.deviceErrorsTotal.Add(1)
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal       int64
	RPCErrorsTotal      int64
	RPCLatencyNanos     int64
	DoneTotal           int64
	ErrorTotal          int64
	RequestCodeTotal    int64
	ResolveCodeTotal    int64
	CallTotal           int64
	DeviceRequestsTotal int64
	DeviceErrorsTotal   int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:       m.rpcCallsTotal.Load(),
		RPCErrorsTotal:      m.rpcErrorsTotal.Load(),
		RPCLatencyNanos:     m.rpcLatencyNanos.Load(),
		DoneTotal:           m.doneTotal.Load(),
		ErrorTotal:          m.errorTotal.Load(),
		RequestCodeTotal:    m.requestCodeTotal.Load(),
		ResolveCodeTotal:    m.resolveCodeTotal.Load(),
		CallTotal:           m.callTotal.Load(),
		DeviceRequestsTotal: m.deviceRequestsTotal.Load(),
		DeviceErrorsTotal:   m.deviceErrorsTotal.Load(),
	}
}

// Transitions returns the total number of resolver steps.
func (s Snapshot) Transitions() int64 {
	return s.DoneTotal + s.ErrorTotal + s.RequestCodeTotal + s.ResolveCodeTotal + s.CallTotal
}

// String summarizes the snapshot on one line for the debug log.
func (s Snapshot) String() string {
	avg := 0.0
	if s.RPCCallsTotal > 0 {
		avg = float64(s.RPCLatencyNanos) / float64(s.RPCCallsTotal) / 1e6
	}
	return fmt.Sprintf(
		"rpc calls=%d errors=%d avg=%.1fms; transitions=%d (request_code=%d resolve_code=%d call=%d done=%d error=%d); device requests=%d errors=%d",
		s.RPCCallsTotal, s.RPCErrorsTotal, avg, s.Transitions(),
		s.RequestCodeTotal, s.ResolveCodeTotal, s.CallTotal, s.DoneTotal, s.ErrorTotal,
		s.DeviceRequestsTotal, s.DeviceErrorsTotal,
	)
}

// RPCCallsTotal returns the total number of RPC calls made.
func (m *Metrics) RPCCallsTotal() int64 {
	return m.rpcCallsTotal.Load()
}

// RPCErrorsTotal returns the total number of RPC errors.
func (m *Metrics) RPCErrorsTotal() int64 {
	return m.rpcErrorsTotal.Load()
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	calls := m.rpcCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.rpcLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.doneTotal.Store(0)
	m.errorTotal.Store(0)
	m.requestCodeTotal.Store(0)
	m.resolveCodeTotal.Store(0)
	m.callTotal.Store(0)
	m.deviceRequestsTotal.Store(0)
	m.deviceErrorsTotal.Store(0)
}
