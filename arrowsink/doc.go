// Package arrowsink collects the optional ingestion and export
// components an arrowtrace deployment can wire in: a directory watcher
// that feeds new trace files to a replayer, a Kafka consumer that does
// the same from a topic, a periodic InfluxDB exporter for table
// snapshots, and a Splunk HEC sink for misuse reports. None of these
// are required to use arrowtable or arrowtrace; they exist for
// operators who want traces or divergence reports to land somewhere
// other than a terminal.
package arrowsink
