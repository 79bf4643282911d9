package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// stepsTotal 按结果统计时间步: converged、nonconverged、steady
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hydroroute_steps_total",
		Help: "Routing time steps by outcome",
	}, []string{"model", "result"})

	trialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hydroroute_trials_total",
		Help: "Solver trials summed over all time steps",
	}, []string{"model"})

	stepSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hydroroute_step_seconds",
		Help:    "Routing time step length in simulated seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 300},
	}, []string{"model"})

	trialsPerStep = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hydroroute_trials_per_step",
		Help:    "Solver trials per time step",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 20},
	}, []string{"model"})
)

// Observer 每步结束时更新指标
type Observer struct {
	Model string // 演算方法名称
}

// ObserveStep 记录一个完成的时间步
func (o *Observer) ObserveStep(dt float64, trials int, converged, steady bool) {
	result := "converged"
	switch {
	case steady:
		result = "steady"
	case !converged:
		result = "nonconverged"
	}
	stepsTotal.WithLabelValues(o.Model, result).Inc()
	trialsTotal.WithLabelValues(o.Model).Add(float64(trials))
	stepSeconds.WithLabelValues(o.Model).Observe(dt)
	trialsPerStep.WithLabelValues(o.Model).Observe(float64(trials))
}

// Handler 指标页面
func Handler() http.Handler { return promhttp.Handler() }
