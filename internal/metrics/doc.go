// Package metrics implements lock-free in-process counters for the authcore
// engine. Counters cover every orchestrator operation outcome; they are
// exposed through Engine.MetricsSnapshot for scraping by the host.
package metrics
