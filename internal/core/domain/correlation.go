package domain

// CooccurrenceKey selects what makes two topics co-occur.
type CooccurrenceKey string

// Available co-occurrence keys.
const (
	// CooccurrenceSponsor links topics that share a sponsor.
	CooccurrenceSponsor CooccurrenceKey = "sponsor"

	// CooccurrenceState links topics that share a state.
	CooccurrenceState CooccurrenceKey = "state"
)

// IsValid returns true if the key is recognised.
func (k CooccurrenceKey) IsValid() bool {
	return k == CooccurrenceSponsor || k == CooccurrenceState
}

// String returns the string representation.
func (k CooccurrenceKey) String() string {
	return string(k)
}

// CorrelationEntry is the overlap weight between two topics.
// Stored once per unordered pair with TopicA < TopicB.
type CorrelationEntry struct {
	TopicA int
	TopicB int
	Weight float64
}
