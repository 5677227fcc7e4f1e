package webhook

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"qywxbot/wecom/pkg/wxerr"
)

const (
	endpointSend   = "send"
	endpointUpload = "upload_media"
	endpointFetch  = "image_fetch"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wecom_webhook_requests_total",
			Help: "企业微信机器人外呼次数 (outcome: ok/remote_error/timeout/transport/protocol)",
		},
		[]string{"endpoint", "msgtype", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wecom_webhook_request_duration_seconds",
			Help:    "企业微信机器人外呼耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
}

// observe 记录一次外呼，remoteCode 为企业微信返回的 errcode
func observe(endpoint, msgtype string, start time.Time, remoteCode int, err error) {
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(endpoint, msgtype, outcome(remoteCode, err)).Inc()
}

func outcome(remoteCode int, err error) string {
	switch {
	case wxerr.IsTimeout(err):
		return "timeout"
	case wxerr.Is(err, wxerr.KindRemote):
		return "remote_error"
	case err != nil:
		if k := wxerr.KindOf(err); k != "" {
			return string(k)
		}
		return string(wxerr.KindTransport)
	case remoteCode != 0:
		return "remote_error"
	default:
		return "ok"
	}
}
