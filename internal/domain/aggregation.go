package domain

// AggregationResponse is the body returned by the by-message-type search
// endpoint. Pointer fields distinguish an absent object from an empty one.
type AggregationResponse struct {
	Aggregations *Aggregations `json:"aggregations"`
}

type Aggregations struct {
	MessageTypes *TermsAggregation `json:"message_types"`
}

type TermsAggregation struct {
	Buckets *[]Bucket `json:"buckets"`
}

// Bucket is one message type with its matching documents under docs.
type Bucket struct {
	Key      string   `json:"key"`
	DocCount uint64   `json:"doc_count"`
	Docs     *TopHits `json:"docs"`
}

type TopHits struct {
	Hits *HitList `json:"hits"`
}

type HitList struct {
	Hits *[]Hit `json:"hits"`
}

// Hit wraps one indexed transaction under _source.
type Hit struct {
	Index  string       `json:"_index,omitempty"`
	ID     string       `json:"_id,omitempty"`
	Source *Transaction `json:"_source"`
}
