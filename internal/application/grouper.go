package application

import (
	"fmt"

	"txview/internal/domain"
)

// GroupByMessageType turns the bucketed aggregation into transactions keyed
// by bucket key. Bucket order and hit order are preserved. Any missing level
// of the expected structure fails the whole response.
func GroupByMessageType(resp domain.AggregationResponse) (*domain.CategorizedTransactions, error) {
	if resp.Aggregations == nil {
		return nil, fmt.Errorf("%w: aggregations missing", ErrShape)
	}
	if resp.Aggregations.MessageTypes == nil {
		return nil, fmt.Errorf("%w: aggregations.message_types missing", ErrShape)
	}
	if resp.Aggregations.MessageTypes.Buckets == nil {
		return nil, fmt.Errorf("%w: aggregations.message_types.buckets missing", ErrShape)
	}
	buckets := *resp.Aggregations.MessageTypes.Buckets

	categorized := domain.NewCategorizedTransactions(len(buckets))
	for i, bucket := range buckets {
		hits, err := bucketHits(bucket)
		if err != nil {
			return nil, fmt.Errorf("bucket %d (%q): %w", i, bucket.Key, err)
		}
		transactions := make([]domain.Transaction, 0, len(hits))
		for j, hit := range hits {
			if hit.Source == nil {
				return nil, fmt.Errorf("bucket %d (%q) hit %d: %w: _source missing", i, bucket.Key, j, ErrShape)
			}
			transactions = append(transactions, *hit.Source)
		}
		categorized.Set(bucket.Key, transactions)
	}
	return categorized, nil
}

func bucketHits(bucket domain.Bucket) ([]domain.Hit, error) {
	if bucket.Docs == nil {
		return nil, fmt.Errorf("%w: docs missing", ErrShape)
	}
	if bucket.Docs.Hits == nil {
		return nil, fmt.Errorf("%w: docs.hits missing", ErrShape)
	}
	if bucket.Docs.Hits.Hits == nil {
		return nil, fmt.Errorf("%w: docs.hits.hits missing", ErrShape)
	}
	return *bucket.Docs.Hits.Hits, nil
}
