package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// configFallbacksTotal counts environment values rejected in favour of a fallback, by key.
var configFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_config_fallbacks_total",
	Help: "Total number of configuration values replaced by their fallback",
}, []string{"key"})
