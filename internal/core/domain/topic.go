package domain

import (
	"strconv"
	"strings"
)

// OutlierTopicID is reserved for bills that fit no topic.
const OutlierTopicID = -1

// nameKeywords is the number of keywords joined into a topic name.
const nameKeywords = 4

// Keyword is one weighted term of a topic signature.
type Keyword struct {
	Term   string
	Weight float64
}

// Topic is a cluster of bills sharing similar text.
type Topic struct {
	// ID is dense and nonnegative, assigned in descending order of Size.
	ID int

	// Name is a display name derived from the top keywords.
	Name string

	// Keywords is the ranked keyword signature.
	Keywords []Keyword

	// Members lists the bill ids assigned to this topic, in input order.
	Members []string
}

// Size returns the member count.
func (t Topic) Size() int {
	return len(t.Members)
}

// IsOutlier returns true for the outlier bucket.
func (t Topic) IsOutlier() bool {
	return t.ID == OutlierTopicID
}

// Terms returns the signature terms in rank order.
func (t Topic) Terms() []string {
	terms := make([]string, len(t.Keywords))
	for i, kw := range t.Keywords {
		terms[i] = kw.Term
	}
	return terms
}

// TopicName builds a display name such as "0_vehicle_electric_credit_tax".
func TopicName(id int, keywords []Keyword) string {
	parts := []string{strconv.Itoa(id)}
	for i, kw := range keywords {
		if i == nameKeywords {
			break
		}
		parts = append(parts, kw.Term)
	}
	return strings.Join(parts, "_")
}

// Assignment maps one bill to its topic.
type Assignment struct {
	BillID  string
	TopicID int
}
