// Package s3 implements storage.Backend on an S3-compatible bucket (AWS S3 or
// MinIO). A folder is an empty marker object whose key ends in a slash.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"study-tracker-be/pkg/storage"
)

const folderContentType = "application/x-directory"

type Store struct {
	client   *s3.Client
	bucket   string
	baseURL  *url.URL
	maxDepth int
}

// Config holds explicit construction parameters. Credentials fall back to the
// default AWS chain when AccessKeyID is empty.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
	PublicBaseURL   string // optional; prefix for folder and file URLs
	MaxDepth        int
	HTTPClient      *http.Client
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})

	base := cfg.PublicBaseURL
	if base == "" && cfg.Endpoint != "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	var baseURL *url.URL
	if base != "" {
		if u, err := url.Parse(base); err == nil {
			baseURL = u
		}
	}
	return &Store{client: client, bucket: cfg.Bucket, baseURL: baseURL, maxDepth: cfg.MaxDepth}, nil
}

func (s *Store) Driver() storage.Driver { return storage.DriverS3 }

func (s *Store) CreateFolder(ctx context.Context, target storage.Target) (*storage.Folder, error) {
	prefix := folderKey(target.Path())
	exists, err := s.folderExists(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrAlreadyExists, prefix)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           aws.String(prefix),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
		ContentType:   aws.String(folderContentType),
	})
	if err != nil {
		return nil, err
	}
	return s.folderAt(prefix), nil
}

func (s *Store) FindFolder(ctx context.Context, target storage.Target, opts storage.FindOptions) (*storage.Folder, error) {
	prefix := folderKey(target.Path())
	exists, err := s.folderExists(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, prefix)
	}
	folder := s.folderAt(prefix)
	if err := s.list(ctx, folder, prefix, storage.ClampDepth(opts.Depth, s.maxDepth)); err != nil {
		return nil, err
	}
	return folder, nil
}

// UploadFile stores the file under the folder prefix, overwriting any object
// with the same key.
func (s *Store) UploadFile(ctx context.Context, target storage.Target, upload storage.Upload) (*storage.File, error) {
	prefix := folderKey(target.Path())
	exists, err := s.folderExists(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, prefix)
	}
	name := storage.SanitizeName(upload.Name)
	if name == "" {
		return nil, fmt.Errorf("file name required")
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	key := prefix + name
	input := &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, err
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: aws.String(key)})
	if err != nil {
		return nil, err
	}
	return &storage.File{
		ReferenceId:  key,
		Name:         name,
		Path:         key,
		Url:          s.urlFor(key),
		Size:         aws.ToInt64(head.ContentLength),
		LastModified: aws.ToTime(head.LastModified),
	}, nil
}

// folderExists checks the marker object first, then falls back to any object
// under the prefix so folders created by other tools are recognised.
func (s *Store) folderExists(ctx context.Context, prefix string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: aws.String(prefix)})
	if err == nil {
		return true, nil
	}
	if !isNotFound(err) {
		return false, err
	}
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  &s.bucket,
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, err
	}
	return len(out.Contents) > 0 || len(out.CommonPrefixes) > 0, nil
}

func (s *Store) list(ctx context.Context, folder *storage.Folder, prefix string, depth int) error {
	if depth <= 0 {
		return nil
	}
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return err
		}
		for _, cp := range out.CommonPrefixes {
			childPrefix := aws.ToString(cp.Prefix)
			child := s.folderAt(childPrefix)
			if err := s.list(ctx, child, childPrefix, depth-1); err != nil {
				return err
			}
			folder.SubFolders = append(folder.SubFolders, child)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			folder.Files = append(folder.Files, &storage.File{
				ReferenceId:  key,
				Name:         path.Base(key),
				Path:         key,
				Url:          s.urlFor(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		return nil
	}
}

func (s *Store) folderAt(prefix string) *storage.Folder {
	p := strings.TrimSuffix(prefix, "/")
	return &storage.Folder{
		ReferenceId: prefix,
		Name:        path.Base(p),
		Path:        p,
		Url:         s.urlFor(prefix),
	}
}

func (s *Store) urlFor(key string) string {
	if s.baseURL == nil {
		return "s3://" + s.bucket + "/" + key
	}
	return s.baseURL.JoinPath(strings.Split(key, "/")...).String()
}

func folderKey(p string) string {
	return strings.Trim(p, "/") + "/"
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
