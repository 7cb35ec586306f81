package main

// SinkConfig is the YAML shape of -config: which optional exporters to
// wire into a run, and their connection details. Every field is
// optional; a zero value disables that sink.
type SinkConfig struct {
	Influx *InfluxSinkConfig `yaml:"influx,omitempty"`
	Splunk *SplunkSinkConfig `yaml:"splunk,omitempty"`
	Kafka  *KafkaSourceConfig `yaml:"kafka,omitempty"`
}

// InfluxSinkConfig configures periodic table-snapshot export.
type InfluxSinkConfig struct {
	Addr        string `yaml:"addr"`
	Database    string `yaml:"database"`
	Measurement string `yaml:"measurement"`
	IntervalSec int    `yaml:"interval-seconds"`
}

// SplunkSinkConfig configures misuse-report forwarding to HEC.
type SplunkSinkConfig struct {
	URLs               []string `yaml:"urls"`
	Token              string   `yaml:"token"`
	Index              string   `yaml:"index"`
	InsecureSkipVerify bool     `yaml:"insecure-skip-verify"`
}

// KafkaSourceConfig configures a topic to pull trace lines from.
type KafkaSourceConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}
