package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec

	gradesSavedTotal         *prometheus.CounterVec
	bulkGradeRecordsTotal    *prometheus.CounterVec
	admissionTransitions     *prometheus.CounterVec
	enrollmentsReconciled    *prometheus.CounterVec
	uploadRejectedTotal      *prometheus.CounterVec
	uploadLatencySeconds     prometheus.Histogram
	dashboardCacheLookups    *prometheus.CounterVec
	gradeLetterFallbackTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradesSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_grades_saved_total",
			Help: "Subject grades written, by source.",
		}, []string{"source"})

		bulkGradeRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_bulk_grade_records_total",
			Help: "Records processed by bulk grade uploads, by outcome.",
		}, []string{"outcome"})

		admissionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_admission_transitions_total",
			Help: "Admission status changes, by target status.",
		}, []string{"to"})

		enrollmentsReconciled = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_enrollment_reconcile_total",
			Help: "Rows created while reconciling approved admissions, by kind.",
		}, []string{"kind"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_upload_rejected_total",
			Help: "Rejected file uploads, by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campus_upload_latency_seconds",
			Help:    "Time spent validating and storing uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		})

		dashboardCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_dashboard_cache_lookups_total",
			Help: "Dashboard cache lookups, by dashboard and result.",
		}, []string{"dashboard", "result"})

		gradeLetterFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campus_grade_letter_fallback_total",
			Help: "Letters computed locally because no grade band matched.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			gradesSavedTotal, bulkGradeRecordsTotal, admissionTransitions,
			enrollmentsReconciled, uploadRejectedTotal, uploadLatencySeconds,
			dashboardCacheLookups, gradeLetterFallbackTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradesSaved counts persisted grades by source (single, bulk).
func GradesSaved() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesSavedTotal
}

// BulkGradeRecords counts bulk records by outcome (applied, failed, rejected).
func BulkGradeRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return bulkGradeRecordsTotal
}

func AdmissionTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return admissionTransitions
}

func EnrollmentsReconciled() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentsReconciled
}

func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

func DashboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheLookups
}

func GradeLetterFallbacks() prometheus.Counter {
	RegisterMetrics()
	return gradeLetterFallbackTotal
}
