// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	loginSuccess    prometheus.Counter
	loginFail       prometheus.Counter
	sessionsRevoked prometheus.Counter
	sessionsPurged  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pitchboard_http_requests_total",
			Help: "HTTPステータスコード別のリクエスト数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchboard_http_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_login_success_total",
			Help: "OAuthログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_login_fail_total",
			Help: "OAuthログイン失敗の合計数",
		}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_sessions_revoked_total",
			Help: "明示的に失効されたセッションの合計数",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchboard_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.requestLatency,
		c.loginSuccess,
		c.loginFail,
		c.sessionsRevoked,
		c.sessionsPurged,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストのステータスコードとレイテンシを記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordSessionRevoked はログアウトによるセッション失効を記録する。
func (c *Collector) RecordSessionRevoked() {
	c.sessionsRevoked.Inc()
}

// RecordSessionsPurged はクリーンアップで削除されたセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// Middleware は全リクエストのステータスとレイテンシを記録するミドルウェアを返す。
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			c.RecordHTTPRequest(rec.statusCode, time.Since(start))
		})
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
