package registry

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
)

// S3 stores the registry as a single S3 object. Each save is one PutObject,
// which replaces the object atomically.
type S3 struct {
	client *s3.Client
	bucket string
	key    string
}

type s3Options struct {
	region          string
	endpoint        string
	pathStyle       bool
	accessKeyID     string
	secretAccessKey string
	httpClient      *http.Client
}

// S3Option configures the S3 store.
type S3Option func(*s3Options)

// WithRegion sets the AWS region (default us-east-1).
func WithRegion(region string) S3Option {
	return func(o *s3Options) { o.region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint such as MinIO.
func WithEndpoint(endpoint string, pathStyle bool) S3Option {
	return func(o *s3Options) {
		o.endpoint = endpoint
		o.pathStyle = pathStyle
	}
}

// WithStaticCredentials bypasses the default credential chain.
func WithStaticCredentials(accessKeyID, secretAccessKey string) S3Option {
	return func(o *s3Options) {
		o.accessKeyID = accessKeyID
		o.secretAccessKey = secretAccessKey
	}
}

// WithHTTPClient replaces the HTTP client used for S3 calls.
func WithHTTPClient(c *http.Client) S3Option {
	return func(o *s3Options) { o.httpClient = c }
}

// NewS3 creates an S3 registry store for bucket/key.
func NewS3(ctx context.Context, bucket, key string, opts ...S3Option) (*S3, error) {
	o := s3Options{region: "us-east-1"}
	for _, opt := range opts {
		opt(&o)
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(o.region)}
	if o.accessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKeyID, o.secretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewConfigError("registry", "load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = o.pathStyle
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
		if o.httpClient != nil {
			so.HTTPClient = o.httpClient
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &S3{client: client, bucket: bucket, key: key}, nil
}

// Location returns the s3:// URI.
func (s *S3) Location() string { return "s3://" + s.bucket + "/" + s.key }

// Load fetches the registry object. A missing object is an empty registry.
func (s *S3) Load(ctx context.Context) (*clients.Registry, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if isNotFound(err) {
		return clients.NewRegistry()
	}
	if err != nil {
		return nil, errors.WrapIO("get", s.Location(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.WrapIO("read", s.Location(), err)
	}
	return Decode(data, s.Location())
}

// Save puts the whole registry document.
func (s *S3) Save(ctx context.Context, reg *clients.Registry) error {
	data, err := Encode(reg)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &s.key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/yaml"),
	})
	if err != nil {
		return errors.WrapSerialization("save", s.Location(), errors.WrapIO("put", s.Location(), err))
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return stderrors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
