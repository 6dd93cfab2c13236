package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TaskCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streaksage_task_completions_total",
			Help: "Total task completions recorded",
		},
	)
	PerfectDays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streaksage_perfect_days_total",
			Help: "Total completions that made the day perfect",
		},
	)
	ReflectionsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streaksage_reflections_saved_total",
			Help: "Total reflection upserts",
		},
	)
)

func init() {
	prometheus.MustRegister(TaskCompletions)
	prometheus.MustRegister(PerfectDays)
	prometheus.MustRegister(ReflectionsSaved)
}
