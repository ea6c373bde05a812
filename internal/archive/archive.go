// Package archive stores transcripts of closed conversations in S3.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glovera/consult/internal/session"
)

// Archiver writes session transcripts to an object store.
type Archiver interface {
	Archive(ctx context.Context, sess *session.Session) error
}

type s3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads one JSON object per session under a key prefix.
type S3Archiver struct {
	client s3Putter
	bucket string
	prefix string
}

// NewS3Archiver builds an archiver using the default AWS credential chain.
func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// NewS3ArchiverWithClient is used by tests to inject a fake client.
func NewS3ArchiverWithClient(client s3Putter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Archive serializes the session and uploads it as <prefix><id>.json.
func (a *S3Archiver) Archive(ctx context.Context, sess *session.Session) error {
	body, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal transcript %s: %w", sess.ID, err)
	}
	key := path.Join(a.prefix, sess.ID+".json")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put transcript %s: %w", sess.ID, err)
	}
	return nil
}

// Noop discards transcripts. Used when no bucket is configured.
type Noop struct{}

func (Noop) Archive(context.Context, *session.Session) error { return nil }
