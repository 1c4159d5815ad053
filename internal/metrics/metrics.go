// Package metrics exposes Prometheus instrumentation for the TStorage
// client. The library itself never opens a listener; StartHTTP is provided
// for the example CLI.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/atendeindustries/tstorage-clients/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters and gauges.
var (
	BytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_bytes_sent_total",
		Help: "Total bytes sent to the TStorage connector.",
	})
	BytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_bytes_received_total",
		Help: "Total bytes received from the TStorage connector.",
	})
	RecordsPut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_records_put_total",
		Help: "Total records sent via PUT/PUTA.",
	})
	RecordsGot = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_records_got_total",
		Help: "Total records received via GET/GET-stream.",
	})
	BatchesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_batches_emitted_total",
		Help: "Total CID-grouped batches emitted by a PUT/PUTA.",
	})
	StreamCallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_stream_callbacks_total",
		Help: "Total partial-batch callback invocations during a streaming GET.",
	})
	Connects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tstorage_connects_total",
		Help: "Total successful Connect calls.",
	})
	ServerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tstorage_server_errors_total",
		Help: "Server-reported result codes, keyed by numeric code.",
	}, []string{"code"})
	ClientErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tstorage_client_errors_total",
		Help: "Client-side sentinel errors, keyed by error name.",
	}, []string{"where"})
	BufferCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tstorage_buffer_capacity_bytes",
		Help: "Current allocated capacity of the channel's BoundedBuffer.",
	})
	MemoryLimitHeadroom = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tstorage_memory_limit_headroom_bytes",
		Help: "Remaining headroom between buffer capacity and the configured memory limit.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Client-error label constants (stable label values to bound cardinality),
// matching the sentinel error set in the root package.
const (
	ErrLabelInvalidInput         = "invalid_input"
	ErrLabelEmptyKeyRange        = "empty_key_range"
	ErrLabelInvalidKey           = "invalid_key"
	ErrLabelMemoryLimitExceeded  = "memory_limit_exceeded"
	ErrLabelOutOfMemory          = "out_of_memory"
	ErrLabelReceive              = "receive"
	ErrLabelSend                 = "send"
	ErrLabelUnexpected           = "unexpected"
	ErrLabelPayloadTooLarge      = "payload_too_large"
	ErrLabelDeserializationError = "deserialization_error"
	ErrLabelTransport            = "transport"
)

// StartHTTP serves Prometheus metrics at /metrics and a readiness probe at
// /ready on addr. Intended for the example CLI; the client library itself
// never calls this.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters, cheap to snapshot without scraping Prometheus
// in-process.
var (
	localBytesSent       uint64
	localBytesReceived   uint64
	localRecordsPut      uint64
	localRecordsGot      uint64
	localBatchesEmitted  uint64
	localStreamCallbacks uint64
	localServerErrors    uint64
	localClientErrors    uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	BytesSent       uint64
	BytesReceived   uint64
	RecordsPut      uint64
	RecordsGot      uint64
	BatchesEmitted  uint64
	StreamCallbacks uint64
	ServerErrors    uint64
	ClientErrors    uint64
}

// Snap returns a consistent-enough snapshot of the local counters for
// logging or diagnostics.
func Snap() Snapshot {
	return Snapshot{
		BytesSent:       atomic.LoadUint64(&localBytesSent),
		BytesReceived:   atomic.LoadUint64(&localBytesReceived),
		RecordsPut:      atomic.LoadUint64(&localRecordsPut),
		RecordsGot:      atomic.LoadUint64(&localRecordsGot),
		BatchesEmitted:  atomic.LoadUint64(&localBatchesEmitted),
		StreamCallbacks: atomic.LoadUint64(&localStreamCallbacks),
		ServerErrors:    atomic.LoadUint64(&localServerErrors),
		ClientErrors:    atomic.LoadUint64(&localClientErrors),
	}
}

// AddBytesSent records n bytes written to the transport.
func AddBytesSent(n int) {
	BytesSent.Add(float64(n))
	atomic.AddUint64(&localBytesSent, uint64(n))
}

// AddBytesReceived records n bytes read from the transport.
func AddBytesReceived(n int) {
	BytesReceived.Add(float64(n))
	atomic.AddUint64(&localBytesReceived, uint64(n))
}

// AddRecordsPut records n records sent via PUT/PUTA.
func AddRecordsPut(n int) {
	RecordsPut.Add(float64(n))
	atomic.AddUint64(&localRecordsPut, uint64(n))
}

// AddRecordsGot records n records received via GET/GET-stream.
func AddRecordsGot(n int) {
	RecordsGot.Add(float64(n))
	atomic.AddUint64(&localRecordsGot, uint64(n))
}

// IncBatchesEmitted records one CID-grouped batch closed during a PUT/PUTA.
func IncBatchesEmitted() {
	BatchesEmitted.Inc()
	atomic.AddUint64(&localBatchesEmitted, 1)
}

// IncStreamCallbacks records one partial-batch callback invocation during
// a streaming GET.
func IncStreamCallbacks() {
	StreamCallbacks.Inc()
	atomic.AddUint64(&localStreamCallbacks, 1)
}

// IncConnects records a successful Connect call.
func IncConnects() { Connects.Inc() }

// IncServerError records a server-reported result code.
func IncServerError(code int32) {
	ServerErrors.WithLabelValues(strconv.FormatInt(int64(code), 10)).Inc()
	atomic.AddUint64(&localServerErrors, 1)
}

// IncClientError records a client-side sentinel error by label.
func IncClientError(label string) {
	ClientErrors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localClientErrors, 1)
}

// SetBufferCapacity records the channel buffer's currently allocated
// capacity.
func SetBufferCapacity(n int) { BufferCapacity.Set(float64(n)) }

// SetMemoryLimitHeadroom records the remaining headroom between buffer
// capacity and the configured memory limit.
func SetMemoryLimitHeadroom(n int) { MemoryLimitHeadroom.Set(float64(n)) }

// InitBuildInfo sets the build info gauge (should be called once at
// startup) and pre-registers the client-error label series so the first
// error doesn't pay Prometheus's first-observation registration cost.
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{
		ErrLabelInvalidInput, ErrLabelEmptyKeyRange, ErrLabelInvalidKey,
		ErrLabelMemoryLimitExceeded, ErrLabelOutOfMemory, ErrLabelReceive,
		ErrLabelSend, ErrLabelUnexpected, ErrLabelPayloadTooLarge,
		ErrLabelDeserializationError, ErrLabelTransport,
	} {
		ClientErrors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}
