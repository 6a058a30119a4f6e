// Package export writes stored runs to exchange formats.
//
// The csv exporter writes topics.csv, topic_keywords.csv, assignments.csv,
// aggregates.csv and correlations.csv; the json exporter writes result.json.
// Column and field names are stable across releases.
package export
