// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-twon.
//
// go-twon is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for twon operations.
// A CLI process is short lived, so metrics are exported by writing the
// registry to a file for node_exporter's textfile collector rather than by
// serving /metrics.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jeremyhahn/go-twon/pkg/twon"
)

const (
	// Namespace is the Prometheus namespace for all twon metrics
	Namespace = "twon"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSplit   = "split"
	OpRecover = "recover"
	OpVerify  = "verify"
)

var (
	// Registry holds every twon collector. It is separate from the default
	// registry so exported files only contain twon series.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// OperationsTotal tracks operations by type and status.
	OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of twon operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks the duration of operations in seconds.
	OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of twon operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal tracks failures by operation and error kind.
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of twon errors by operation and error type",
		},
		[]string{LabelOperation, LabelErrorType},
	)

	// SharesGenerated counts shares produced by split.
	SharesGenerated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_generated_total",
			Help:      "Total number of shares generated",
		},
	)

	// SecretBytes observes the size of split and recovered secrets.
	SecretBytes = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "secret_bytes",
			Help:      "Size of secrets in bytes",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{LabelOperation},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and outcome. A
// non-nil err is also counted in ErrorsTotal under its twon.Kind.
//
// Example:
//
//	start := time.Now()
//	shares, err := twon.Split(secret, n)
//	metrics.RecordOperation(metrics.OpSplit, start, err)
func RecordOperation(operation string, start time.Time, err error) {
	if !enabled.Load() {
		return
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
		ErrorsTotal.WithLabelValues(operation, twon.Kind(err)).Inc()
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordShares adds n to the generated share counter.
func RecordShares(n int) {
	if !enabled.Load() {
		return
	}
	SharesGenerated.Add(float64(n))
}

// RecordSecretSize observes the size of a secret handled by operation.
func RecordSecretSize(operation string, size int) {
	if !enabled.Load() {
		return
	}
	SecretBytes.WithLabelValues(operation).Observe(float64(size))
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
