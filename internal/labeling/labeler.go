// Package labeling derives ranked keyword signatures for topics.
package labeling

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/james-bowman/nlp"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
)

// Ensure Labeler implements the interface.
var _ driven.Labeler = (*Labeler)(nil)

// Labeler scores terms with class-based TF-IDF: every topic's member tokens
// form one class document, and a term ranks high when it is frequent in the
// class but rare across all classes.
//
//	score(t, c) = tf(t, c) / |c| * log(1 + A / f(t))
//
// where |c| is the token count of class c, A the mean token count per class
// and f(t) the frequency of t across all classes, the outlier class included.
type Labeler struct {
	keywords int
}

// New creates a labeler producing up to keywords terms per topic.
func New(keywords int) *Labeler {
	if keywords <= 0 {
		keywords = domain.DefaultKeywordCountPerTopic
	}
	return &Labeler{keywords: keywords}
}

// Label builds the non-outlier topics, ordered by id.
// docs and assignments are parallel slices in input order.
func (l *Labeler) Label(ctx context.Context, docs []domain.NormalizedDocument, assignments []int) ([]domain.Topic, error) {
	if len(docs) != len(assignments) {
		return nil, &domain.InternalConsistencyError{
			Detail: fmt.Sprintf("%d documents but %d assignments", len(docs), len(assignments)),
		}
	}

	classes, err := buildClasses(docs, assignments)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err := l.score(classes)
	if err != nil {
		return nil, err
	}

	var topics []domain.Topic
	for ci, c := range classes {
		if c.id == domain.OutlierTopicID {
			continue
		}
		keywords := scores[ci]
		topics = append(topics, domain.Topic{
			ID:       c.id,
			Name:     domain.TopicName(c.id, keywords),
			Keywords: keywords,
			Members:  c.members,
		})
	}
	return topics, nil
}

// class is the concatenated token stream of one topic.
type class struct {
	id      int
	members []string
	tokens  []string
}

// buildClasses groups documents by topic. Classes are ordered by id with the
// outlier class first. Topic ids must be dense from zero.
func buildClasses(docs []domain.NormalizedDocument, assignments []int) ([]*class, error) {
	byID := make(map[int]*class)
	maxID := domain.OutlierTopicID
	for i, id := range assignments {
		if id < domain.OutlierTopicID {
			return nil, &domain.InternalConsistencyError{
				Detail: fmt.Sprintf("bill %s has invalid topic id %d", docs[i].BillID, id),
			}
		}
		c, ok := byID[id]
		if !ok {
			c = &class{id: id}
			byID[id] = c
		}
		c.members = append(c.members, docs[i].BillID)
		c.tokens = append(c.tokens, docs[i].Tokens...)
		if id > maxID {
			maxID = id
		}
	}

	var classes []*class
	if c, ok := byID[domain.OutlierTopicID]; ok {
		classes = append(classes, c)
	}
	for id := 0; id <= maxID; id++ {
		c, ok := byID[id]
		if !ok || len(c.members) == 0 {
			return nil, &domain.InternalConsistencyError{
				Detail: fmt.Sprintf("topic %d has no members", id),
			}
		}
		classes = append(classes, c)
	}
	return classes, nil
}

// score returns the ranked keywords of every class, indexed like classes.
func (l *Labeler) score(classes []*class) ([][]domain.Keyword, error) {
	out := make([][]domain.Keyword, len(classes))

	corpus := make([]string, len(classes))
	total := 0
	for i, c := range classes {
		corpus[i] = strings.Join(c.tokens, " ")
		total += len(c.tokens)
	}
	if total == 0 {
		return out, nil
	}

	vectoriser := nlp.NewCountVectoriser()
	counts, err := vectoriser.FitTransform(corpus...)
	if err != nil {
		return nil, fmt.Errorf("count terms: %w", err)
	}

	vocab := make([]string, len(vectoriser.Vocabulary))
	for term, idx := range vectoriser.Vocabulary {
		vocab[idx] = term
	}

	terms, nClasses := counts.Dims()
	classSize := make([]float64, nClasses)
	termFreq := make([]float64, terms)
	var sum float64
	for t := 0; t < terms; t++ {
		for c := 0; c < nClasses; c++ {
			v := counts.At(t, c)
			classSize[c] += v
			termFreq[t] += v
			sum += v
		}
	}
	avg := sum / float64(nClasses)

	for c := 0; c < nClasses; c++ {
		if classes[c].id == domain.OutlierTopicID || classSize[c] == 0 {
			continue
		}
		var ranked []domain.Keyword
		for t := 0; t < terms; t++ {
			tf := counts.At(t, c)
			if tf == 0 {
				continue
			}
			ranked = append(ranked, domain.Keyword{
				Term:   vocab[t],
				Weight: tf / classSize[c] * math.Log(1+avg/termFreq[t]),
			})
		}
		out[c] = topN(ranked, l.keywords)
	}
	return out, nil
}

// topN sorts by descending weight, ties by term, and keeps n entries.
func topN(ranked []domain.Keyword, n int) []domain.Keyword {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
