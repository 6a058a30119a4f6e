// Package file provides the file-based configuration adapter.
//
// ConfigStore keeps flat dotted keys in memory and persists them to
// ~/.billtopics/config.toml, writing dotted keys as TOML tables.
// LoadConfig turns a store plus BILLTOPICS_* environment overrides into a
// validated domain.Config; LoadDotEnv reads an optional .env file first.
package file
