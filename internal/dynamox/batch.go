package dynamox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/boycottpro/users/internal/common"
	"github.com/sethvargo/go-retry"
)

// BatchResult counts what a PutAll call did.
type BatchResult struct {
	Items   int // put requests submitted
	Calls   int // BatchWriteItem calls issued, retries included
	Retries int // calls that only re-sent unprocessed items
}

// BatchWriter writes put requests in chunks of at most Size.
type BatchWriter struct {
	api        API
	size       int
	maxRetries uint64
	baseDelay  time.Duration
}

// NewBatchWriter clamps size to 1..common.DynamoBatchWriteLimit.
func NewBatchWriter(api API, size int, maxRetries uint64, baseDelay time.Duration) *BatchWriter {
	if size < 1 || size > common.DynamoBatchWriteLimit {
		size = common.DynamoBatchWriteLimit
	}
	return &BatchWriter{api: api, size: size, maxRetries: maxRetries, baseDelay: baseDelay}
}

// PutAll writes items to table, one chunk per call, sequentially and in
// order. Empty chunks are never sent. Items the store leaves unprocessed are
// re-sent with exponential backoff; when the retry budget runs out the error
// wraps common.ErrUnprocessedItems.
func (w *BatchWriter) PutAll(ctx context.Context, table string, items []map[string]types.AttributeValue) (BatchResult, error) {
	var res BatchResult

	for start := 0; start < len(items); start += w.size {
		end := min(start+w.size, len(items))

		chunk := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			chunk = append(chunk, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		if err := w.writeChunk(ctx, table, chunk, &res); err != nil {
			return res, err
		}
		res.Items += len(chunk)
	}

	return res, nil
}

func (w *BatchWriter) writeChunk(ctx context.Context, table string, chunk []types.WriteRequest, res *BatchResult) error {
	pending := chunk
	first := true

	backoff := retry.WithMaxRetries(w.maxRetries, retry.NewExponential(w.backoffBase()))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if !first {
			res.Retries++
		}
		first = false

		res.Calls++
		out, err := w.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: pending},
		})
		if err != nil {
			return err
		}

		pending = out.UnprocessedItems[table]
		if len(pending) > 0 {
			return retry.RetryableError(fmt.Errorf("%w: %d items in %s", common.ErrUnprocessedItems, len(pending), table))
		}
		return nil
	})
	if err != nil && !errors.Is(err, common.ErrUnprocessedItems) {
		return fmt.Errorf("batch write to %s: %w", table, err)
	}
	return err
}

func (w *BatchWriter) backoffBase() time.Duration {
	if w.baseDelay <= 0 {
		return time.Nanosecond
	}
	return w.baseDelay
}
