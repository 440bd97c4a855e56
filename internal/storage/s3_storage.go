package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"file-manager-server/config"
	"file-manager-server/internal/apperr"
	"file-manager-server/internal/ports"
)

// S3Storage : bucket-backed blob store. S3 PUTs are atomic, an aborted or
// failed upload never becomes visible, which matches the sink contract
// without a temp-and-rename step.
type S3Storage struct {
	client *s3.Client
	bucket string
}

func NewS3Storage(ctx context.Context, cfg *config.S3Config) (*S3Storage, error) {
	var client *s3.Client

	if cfg.Local {
		client = s3.New(s3.Options{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				"minioadmin",
				"minioadmin",
				"",
			),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})

		if err := createBucketIfNotExists(ctx, client, cfg.Bucket); err != nil {
			return nil, fmt.Errorf("bucket setup failed: %w", err)
		}
	} else {
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config failed: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return err
	}

	log.Printf("bucket %s created", bucket)
	return nil
}

// WriteStream : pipes the sink into a single PutObject so bytes stream to the
// bucket without buffering the payload.
func (s *S3Storage) WriteStream(ctx context.Context, storageName string) (ports.BlobSink, error) {
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(storageName),
			Body:   pr,
		})
		pr.CloseWithError(err)
		done <- err
	}()

	return &s3Sink{pw: pw, done: done}, nil
}

func (s *S3Storage) ReadRange(ctx context.Context, storageName string, start int64, end int64) (io.ReadCloser, error) {
	rangeHeader := fmt.Sprintf("bytes=%d-", start)
	if end >= 0 {
		rangeHeader = fmt.Sprintf("bytes=%d-%d", start, end)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageName),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, apperr.Wrap(apperr.KindNotFound, "blob not found", err)
		}
		return nil, fmt.Errorf("fetching blob range failed: %w", err)
	}

	return out.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, storageName string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageName),
	})
	if err != nil {
		return fmt.Errorf("removing blob failed: %w", err)
	}
	return nil
}

type s3Sink struct {
	pw   *io.PipeWriter
	done chan error
}

func (s *s3Sink) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

func (s *s3Sink) Close() error {
	if err := s.pw.Close(); err != nil {
		return err
	}
	if err := <-s.done; err != nil {
		return fmt.Errorf("uploading blob failed: %w", err)
	}
	return nil
}

func (s *s3Sink) Abort() error {
	s.pw.CloseWithError(errors.New("upload aborted"))
	<-s.done
	return nil
}
