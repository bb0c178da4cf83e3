package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "haptics"

// Metrics 触觉客户端的 Prometheus 指标
//
// 所有方法都允许在 nil 接收者上调用，未启用监控时组件直接传 nil。
type Metrics struct {
	registry *prometheus.Registry

	messagesSent      prometheus.Counter
	sendFailures      prometheus.Counter
	submits           *prometheus.CounterVec
	rejected          *prometheus.CounterVec
	registrations     prometheus.Counter
	reconnectAttempts *prometheus.CounterVec
	responsesParsed   prometheus.Counter
	parseErrors       prometheus.Counter
	connected         prometheus.Gauge
	activeKeys        prometheus.Gauge
}

// NewMetrics 创建并注册指标，每个实例使用独立的 registry
func NewMetrics(instanceID string) *Metrics {
	labels := prometheus.Labels{"instance_id": instanceID}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "messages_sent_total",
			Help:        "发送到播放服务的消息数",
			ConstLabels: labels,
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "send_failures_total",
			Help:        "写入失败的消息数",
			ConstLabels: labels,
		}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "submits_total",
			Help:        "按类型统计的提交操作数",
			ConstLabels: labels,
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "submits_rejected_total",
			Help:        "发送前被拒绝的操作数",
			ConstLabels: labels,
		}, []string{"reason"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "registrations_total",
			Help:        "注册的图案数",
			ConstLabels: labels,
		}),
		reconnectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reconnect_attempts_total",
			Help:        "重连尝试次数",
			ConstLabels: labels,
		}, []string{"result"}),
		responsesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "responses_parsed_total",
			Help:        "成功解析的状态消息数",
			ConstLabels: labels,
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "parse_errors_total",
			Help:        "解析失败的状态消息数",
			ConstLabels: labels,
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "connected",
			Help:        "是否已连接播放服务 (0/1)",
			ConstLabels: labels,
		}),
		activeKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "active_keys",
			Help:        "播放服务上报的活跃 key 数",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.messagesSent,
		m.sendFailures,
		m.submits,
		m.rejected,
		m.registrations,
		m.reconnectAttempts,
		m.responsesParsed,
		m.parseErrors,
		m.connected,
		m.activeKeys,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSent() {
	if m != nil {
		m.messagesSent.Inc()
	}
}

func (m *Metrics) ObserveSendFailure() {
	if m != nil {
		m.sendFailures.Inc()
	}
}

func (m *Metrics) ObserveSubmit(submitType string) {
	if m != nil {
		m.submits.WithLabelValues(submitType).Inc()
	}
}

func (m *Metrics) ObserveRejected(reason string) {
	if m != nil {
		m.rejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveRegister() {
	if m != nil {
		m.registrations.Inc()
	}
}

func (m *Metrics) ObserveReconnect(success bool) {
	if m == nil {
		return
	}
	result := "failed"
	if success {
		result = "connected"
	}
	m.reconnectAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveResponse(activeKeys int) {
	if m != nil {
		m.responsesParsed.Inc()
		m.activeKeys.Set(float64(activeKeys))
	}
}

func (m *Metrics) ObserveParseError() {
	if m != nil {
		m.parseErrors.Inc()
	}
}

func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

// ResetActiveKeys 清零活跃 key 指标
func (m *Metrics) ResetActiveKeys() {
	if m != nil {
		m.activeKeys.Set(0)
	}
}
