package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tuncaytekle/docsync/internal/config"
	"github.com/tuncaytekle/docsync/internal/docsync"
)

// S3Store implements the RemoteStore interface against an S3-compatible
// bucket. Document objects live under <prefix>/objects/<stableId> with the
// identity-relevant fields carried as object metadata; folder records live
// under <prefix>/folders/<folderId>.json.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// Metadata keys on document objects. Values must be ASCII, so the display
// name is URL-escaped.
const (
	metaName       = "name"
	metaFolderID   = "folder-id"
	metaModifiedAt = "modified-at"
	metaEncrypted  = "encrypted"
)

// NewS3Store creates an S3 remote store from configuration. When an endpoint
// is configured (e.g. MinIO), path-style addressing is used.
func NewS3Store(ctx context.Context, cfg config.RemoteConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 remote requires s3_bucket to be set")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
	}, nil
}

func (s *S3Store) objectKey(key string) string {
	return path.Join(s.prefix, "objects", key)
}

func (s *S3Store) folderKey(folderID string) string {
	return path.Join(s.prefix, "folders", folderID+".json")
}

// CheckAvailability probes the bucket.
func (s *S3Store) CheckAvailability(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("%w: %v", docsync.ErrRemoteUnavailable, err)
	}
	return nil
}

// Push upserts a document object. The upload manager handles multipart
// uploads transparently for large documents.
func (s *S3Store) Push(ctx context.Context, obj *docsync.RemoteObject) error {
	metadata := map[string]string{
		metaName:       url.QueryEscape(obj.Name),
		metaModifiedAt: obj.ModifiedAt.UTC().Format(time.RFC3339),
		metaEncrypted:  strconv.FormatBool(obj.Encrypted),
	}
	if obj.FolderID != "" {
		metadata[metaFolderID] = obj.FolderID
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(obj.Key)),
		Body:        bytes.NewReader(obj.Bytes),
		ContentType: aws.String("application/pdf"),
		Metadata:    metadata,
	})
	if err != nil {
		return fmt.Errorf("uploading object %s: %w", obj.Key, err)
	}
	return nil
}

// ListKeys enumerates all document object keys.
func (s *S3Store) ListKeys(ctx context.Context) ([]string, error) {
	prefix := path.Join(s.prefix, "objects") + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, (*obj.Key)[len(prefix):])
		}
	}
	return keys, nil
}

// Fetch returns the object stored under key, or (nil, nil) if absent.
func (s *S3Store) Fetch(ctx context.Context, key string) (*docsync.RemoteObject, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", key, err)
	}

	obj := &docsync.RemoteObject{
		Key:       key,
		FolderID:  out.Metadata[metaFolderID],
		SizeBytes: int64(len(data)),
		Bytes:     data,
	}
	if name, err := url.QueryUnescape(out.Metadata[metaName]); err == nil {
		obj.Name = name
	}
	if ts, err := time.Parse(time.RFC3339, out.Metadata[metaModifiedAt]); err == nil {
		obj.ModifiedAt = ts
	}
	if encrypted, err := strconv.ParseBool(out.Metadata[metaEncrypted]); err == nil {
		obj.Encrypted = encrypted
	}
	return obj, nil
}

// Delete removes a document object. Deleting an absent key succeeds — S3
// delete is idempotent.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// PushFolder upserts a folder record as a small JSON object.
func (s *S3Store) PushFolder(ctx context.Context, folder docsync.FolderRecord) error {
	data, err := json.Marshal(folder)
	if err != nil {
		return fmt.Errorf("encoding folder %s: %w", folder.ID, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.folderKey(folder.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading folder %s: %w", folder.ID, err)
	}
	return nil
}

// ListFolders returns all stored folder records.
func (s *S3Store) ListFolders(ctx context.Context) ([]docsync.FolderRecord, error) {
	prefix := path.Join(s.prefix, "folders") + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var folders []docsync.FolderRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing folders: %w", err)
		}
		for _, obj := range page.Contents {
			out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("fetching folder %s: %w", *obj.Key, err)
			}

			var folder docsync.FolderRecord
			err = json.NewDecoder(out.Body).Decode(&folder)
			out.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("parsing folder %s: %w", *obj.Key, err)
			}
			folders = append(folders, folder)
		}
	}
	return folders, nil
}

// DeleteFolder removes a folder record. Absent folders succeed.
func (s *S3Store) DeleteFolder(ctx context.Context, folderID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.folderKey(folderID)),
	})
	if err != nil {
		return fmt.Errorf("deleting folder %s: %w", folderID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

// Compile-time check that S3Store implements docsync.RemoteStore.
var _ docsync.RemoteStore = (*S3Store)(nil)
