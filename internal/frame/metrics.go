package frame

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linnemanlabs/defectscope/internal/defect"
)

// Metrics holds Prometheus metrics for frame classification.
type Metrics struct {
	FramesTotal        *prometheus.CounterVec
	AtomsTotal         *prometheus.CounterVec
	FrameAtoms         prometheus.Histogram
	FrameDuration      prometheus.Histogram
	FrameDefects       prometheus.Histogram
	NotificationsTotal *prometheus.CounterVec
}

// NewMetrics registers and returns frame metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defectscope_frames_total",
			Help: "Total frames submitted by outcome.",
		}, []string{"outcome"}),
		AtomsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defectscope_atoms_classified_total",
			Help: "Total atoms classified by defect label.",
		}, []string{"label"}),
		FrameAtoms: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "defectscope_frame_atoms",
			Help:    "Atoms per classified frame.",
			Buckets: prometheus.ExponentialBuckets(100, 4, 10), // 100 .. ~26M
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "defectscope_frame_duration_seconds",
			Help:    "Time to classify one frame in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~26s
		}),
		FrameDefects: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "defectscope_frame_defect_fraction",
			Help:    "Fraction of non-bulk atoms per classified frame.",
			Buckets: prometheus.LinearBuckets(0, 0.05, 21), // 0 .. 1
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "defectscope_notifications_total",
			Help: "Defect notifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.FramesTotal,
		m.AtomsTotal,
		m.FrameAtoms,
		m.FrameDuration,
		m.FrameDefects,
		m.NotificationsTotal,
	)

	// pre-create label series so dashboards see zeros
	for _, l := range defect.Labels() {
		m.AtomsTotal.WithLabelValues(l.String())
	}

	return m
}

func (m *Metrics) frameClassified(s *Summary) {
	if m == nil {
		return
	}
	m.FramesTotal.WithLabelValues("ok").Inc()
	for i, n := range s.Counts {
		if n > 0 {
			m.AtomsTotal.WithLabelValues(defect.Label(i).String()).Add(float64(n))
		}
	}
	m.FrameAtoms.Observe(float64(s.Atoms))
	m.FrameDuration.Observe(s.Duration)
	m.FrameDefects.Observe(s.Counts.DefectFraction())
}

func (m *Metrics) frameFailed(outcome string) {
	if m == nil {
		return
	}
	m.FramesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) notified(err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "error"
	}
	m.NotificationsTotal.WithLabelValues(outcome).Inc()
}
