package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/poolside-labs/darksave/internal/domain"
)

// Archiver implements domain.BlobWriter with single-shot PutObject calls.
// Archived payloads are small JSON documents, so multipart upload is not
// needed.
type Archiver struct {
	client *s3.Client
	bucket string
}

// NewArchiver creates an Archiver writing to the client's bucket.
func NewArchiver(c *Client) *Archiver {
	return &Archiver{
		client: c.S3(),
		bucket: c.Bucket(),
	}
}

// Put uploads data to the given object path.
func (a *Archiver) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(path),
		Body:   data,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3blob: put %s: %w", path, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.BlobWriter = (*Archiver)(nil)
