package employee

import "errors"

var ErrEmptyBatch = errors.New("employee: batch must contain at least one record")

// Batch is an ordered, non-empty list of records sent in one request.
type Batch struct {
	records []Record
}

func NewBatch(records []Record) (Batch, error) {
	if len(records) == 0 {
		return Batch{}, ErrEmptyBatch
	}
	return Batch{records: append([]Record(nil), records...)}, nil
}

func (b Batch) Len() int {
	return len(b.records)
}

func (b Batch) Records() []Record {
	return append([]Record(nil), b.records...)
}

func (b Batch) Normalized(scale Scale) Batch {
	out := make([]Record, len(b.records))
	for i, r := range b.records {
		out[i] = r.Normalized(scale)
	}
	return Batch{records: out}
}
