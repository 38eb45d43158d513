package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DocumentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_agent_documents_processed_total",
			Help: "Total documents ingested, by source format",
		},
		[]string{"format"},
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "study_agent_extraction_duration_seconds",
			Help:    "Document text extraction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_agent_generation_duration_seconds",
			Help:    "LLM generation duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_agent_generation_total",
			Help: "Total generation requests, by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	QuizAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "study_agent_quiz_attempts_total",
			Help: "Total graded quiz attempts",
		},
	)

	QuizScoreRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "study_agent_quiz_score_ratio",
			Help:    "Score divided by total questions per attempt",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_agent_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"entry"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_agent_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"entry"},
	)
)

func Init() {
	prometheus.MustRegister(DocumentsProcessed)
	prometheus.MustRegister(ExtractionDuration)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(GenerationTotal)
	prometheus.MustRegister(QuizAttemptsTotal)
	prometheus.MustRegister(QuizScoreRatio)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
