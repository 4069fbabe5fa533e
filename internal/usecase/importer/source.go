package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
)

// ErrSourceNotConfigured marks a source that has nothing to read from.
var ErrSourceNotConfigured = errors.New("importer: source not configured")

// Source is somewhere an import file can be read from.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// ======================================================
// FILE
// ======================================================

type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	if s.Path == "" {
		return nil, ErrSourceNotConfigured
	}
	return os.Open(s.Path)
}

// ======================================================
// S3
// ======================================================

// S3GetObjectAPI is the part of *s3.Client the importer needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Source struct {
	Client S3GetObjectAPI
	Bucket string
	Key    string
}

func (s S3Source) Name() string { return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key) }

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Client == nil || s.Bucket == "" || s.Key == "" {
		return nil, ErrSourceNotConfigured
	}
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Name(), err)
	}
	return out.Body, nil
}

// NewS3Client builds a client from static keys. With no keys the client
// signs nothing, which works for public buckets. A non-empty endpoint points
// at an S3-compatible store and switches to path-style addressing.
func NewS3Client(region, accessKey, secretKey, endpoint string) *s3.Client {
	opts := s3.Options{Region: region}
	if accessKey != "" && secretKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// ======================================================
// FALLBACK
// ======================================================

// OpenFirst opens the first source that has something to read. Missing
// files and unconfigured sources move on to the next one; any other error
// stops the search.
func OpenFirst(ctx context.Context, log *zap.Logger, sources ...Source) (io.ReadCloser, string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		rc, err := src.Open(ctx)
		if err == nil {
			return rc, src.Name(), nil
		}
		if errors.Is(err, ErrSourceNotConfigured) || errors.Is(err, fs.ErrNotExist) {
			log.Debug("import source unavailable", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		return nil, src.Name(), err
	}
	return nil, "", httperr.ErrBusinessf("csv_source_unavailable", "no CSV file found to import")
}
