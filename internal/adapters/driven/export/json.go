package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// ResultFile is the file written by JSONExporter.
const ResultFile = "result.json"

// Ensure JSONExporter implements the interface.
var _ driven.Exporter = (*JSONExporter)(nil)

// JSONExporter writes the whole run as a single JSON document.
type JSONExporter struct{}

// NewJSON creates a JSON exporter.
func NewJSON() *JSONExporter {
	return &JSONExporter{}
}

// Format returns "json".
func (e *JSONExporter) Format() string {
	return "json"
}

// Export writes result.json into dir.
func (e *JSONExporter) Export(result *domain.RunResult, dir string) ([]string, error) {
	if result == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	data, err := json.MarshalIndent(NewDocument(result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	path := filepath.Join(dir, ResultFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return []string{path}, nil
}

// Document is the JSON schema of an exported run.
type Document struct {
	RunID        string              `json:"run_id"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	BillCount    int                 `json:"bill_count"`
	OutlierCount int                 `json:"outlier_count"`
	Config       ConfigDocument      `json:"config"`
	Topics       []TopicDocument     `json:"topics"`
	Assignments  []AssignmentDoc     `json:"assignments"`
	Aggregates   []AggregateDocument `json:"aggregates"`
	Correlations []CorrelationDoc    `json:"correlations"`
	Skipped      []SkippedDocument   `json:"skipped"`
}

// ConfigDocument records the settings that shaped a run.
type ConfigDocument struct {
	TargetTopicCount     int    `json:"target_topic_count"`
	MinTopicSize         int    `json:"min_topic_size"`
	KeywordCountPerTopic int    `json:"keyword_count_per_topic"`
	PeriodCutoffDate     string `json:"period_cutoff_date"`
	RandomSeed           int64  `json:"random_seed"`
	MinTokenLength       int    `json:"min_token_length"`
	CooccurrenceKey      string `json:"cooccurrence_key"`
	EmbeddingProvider    string `json:"embedding_provider"`
	Reduction            string `json:"reduction"`
}

// TopicDocument is one topic with its signature and members.
type TopicDocument struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Size     int               `json:"size"`
	Keywords []KeywordDocument `json:"keywords"`
	Members  []string          `json:"members"`
}

// KeywordDocument is one weighted term.
type KeywordDocument struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// AssignmentDoc maps a bill to a topic; -1 is the outlier topic.
type AssignmentDoc struct {
	BillID  string `json:"bill_id"`
	TopicID int    `json:"topic_id"`
}

// AggregateDocument is one aggregate row.
type AggregateDocument struct {
	TopicID      int     `json:"topic_id"`
	Dimension    string  `json:"dimension"`
	Value        string  `json:"value"`
	Count        int     `json:"count"`
	YeaSum       int     `json:"yea_sum"`
	NaySum       int     `json:"nay_sum"`
	SupportRatio float64 `json:"support_ratio"`
}

// CorrelationDoc is one topic pair.
type CorrelationDoc struct {
	TopicA int     `json:"topic_a"`
	TopicB int     `json:"topic_b"`
	Weight float64 `json:"weight"`
}

// SkippedDocument is one rejected input record.
type SkippedDocument struct {
	Index  int    `json:"index"`
	BillID string `json:"bill_id,omitempty"`
	Reason string `json:"reason"`
}

// NewDocument converts a run into its JSON schema. Empty lists encode as [].
func NewDocument(r *domain.RunResult) Document {
	doc := Document{
		RunID:        r.RunID,
		StartedAt:    r.StartedAt.UTC(),
		FinishedAt:   r.FinishedAt.UTC(),
		BillCount:    r.BillCount,
		OutlierCount: r.OutlierCount,
		Config: ConfigDocument{
			TargetTopicCount:     r.Config.TargetTopicCount,
			MinTopicSize:         r.Config.MinTopicSize,
			KeywordCountPerTopic: r.Config.KeywordCountPerTopic,
			PeriodCutoffDate:     r.Config.PeriodCutoffDate.Format(time.DateOnly),
			RandomSeed:           r.Config.RandomSeed,
			MinTokenLength:       r.Config.MinTokenLength,
			CooccurrenceKey:      r.Config.CooccurrenceKey.String(),
			EmbeddingProvider:    r.Config.Embedding.Provider.String(),
			Reduction:            r.Config.Clustering.Reduction.String(),
		},
		Topics:       make([]TopicDocument, 0, len(r.Topics)),
		Assignments:  make([]AssignmentDoc, 0, len(r.Assignments)),
		Aggregates:   make([]AggregateDocument, 0, len(r.Aggregates)),
		Correlations: make([]CorrelationDoc, 0, len(r.Correlations)),
		Skipped:      make([]SkippedDocument, 0, len(r.Skipped)),
	}

	for _, t := range r.Topics {
		td := TopicDocument{
			ID:       t.ID,
			Name:     t.Name,
			Size:     t.Size(),
			Keywords: make([]KeywordDocument, 0, len(t.Keywords)),
			Members:  append([]string{}, t.Members...),
		}
		for _, kw := range t.Keywords {
			td.Keywords = append(td.Keywords, KeywordDocument{Term: kw.Term, Weight: kw.Weight})
		}
		doc.Topics = append(doc.Topics, td)
	}
	for _, a := range r.Assignments {
		doc.Assignments = append(doc.Assignments, AssignmentDoc{BillID: a.BillID, TopicID: a.TopicID})
	}
	for _, a := range r.Aggregates {
		doc.Aggregates = append(doc.Aggregates, AggregateDocument{
			TopicID:      a.TopicID,
			Dimension:    a.Dimension.String(),
			Value:        a.Value,
			Count:        a.Count,
			YeaSum:       a.YeaSum,
			NaySum:       a.NaySum,
			SupportRatio: a.SupportRatio(),
		})
	}
	for _, c := range r.Correlations {
		doc.Correlations = append(doc.Correlations, CorrelationDoc{TopicA: c.TopicA, TopicB: c.TopicB, Weight: c.Weight})
	}
	for _, s := range r.Skipped {
		doc.Skipped = append(doc.Skipped, SkippedDocument{Index: s.Index, BillID: s.BillID, Reason: s.Reason})
	}
	return doc
}
