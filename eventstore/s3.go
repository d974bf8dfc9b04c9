package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store is a Store persisted as a single JSON array object in S3, for the
// Lambda deployment. The object is read once on open and rewritten on each
// append; event volume per household is small enough that this stays cheap.
type S3Store struct {
	*MemoryStore
	bucket string
	key    string
	s3     *s3.Client
}

// NewS3Store loads the event log object from S3. A missing object is treated
// as an empty log.
func NewS3Store(ctx context.Context, s3Client *s3.Client, bucket, key string) (*S3Store, error) {
	mem := NewMemoryStore()
	store := &S3Store{MemoryStore: mem, bucket: bucket, key: key, s3: s3Client}

	resp, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to get event log from S3: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log from S3: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &mem.events); err != nil {
			return nil, fmt.Errorf("corrupt event log object s3://%s/%s: %w", bucket, key, err)
		}
	}

	return store, nil
}

func (s *S3Store) Append(ctx context.Context, events ...Event) error {
	if err := s.MemoryStore.Append(ctx, events...); err != nil {
		return err
	}

	s.mu.RLock()
	data, err := json.Marshal(s.events)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal event log: %w", err)
	}

	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put event log to S3: %w", err)
	}
	return nil
}
