package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/harborfs/harbordrive/internal/logger"
	"github.com/harborfs/harbordrive/pkg/blob"
	blobFs "github.com/harborfs/harbordrive/pkg/blob/fs"
	blobMemory "github.com/harborfs/harbordrive/pkg/blob/memory"
	blobS3 "github.com/harborfs/harbordrive/pkg/blob/s3"
	"github.com/harborfs/harbordrive/pkg/identity"
	"github.com/harborfs/harbordrive/pkg/store"
	storeBadger "github.com/harborfs/harbordrive/pkg/store/badger"
	storeMemory "github.com/harborfs/harbordrive/pkg/store/memory"
)

// CreateBlobStore creates a blob backend based on configuration.
//
// The Type field selects the implementation; the matching type-specific
// map is decoded and passed to the backend's constructor.
//
// Supported types:
//   - "filesystem": pkg/blob/fs (local filesystem storage)
//   - "s3": pkg/blob/s3 (Amazon S3 or compatible storage)
//   - "memory": pkg/blob/memory (ephemeral, tests and development)
func CreateBlobStore(ctx context.Context, cfg *BlobConfig) (blob.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemBlobStore(ctx, cfg.Filesystem)
	case "s3":
		return createS3BlobStore(ctx, cfg.S3)
	case "memory":
		return blobMemory.NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend type: %q", cfg.Type)
	}
}

// createFilesystemBlobStore creates a filesystem-backed blob store.
func createFilesystemBlobStore(ctx context.Context, options map[string]any) (blob.Store, error) {
	type FilesystemBlobStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemBlobStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem blob config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem blob backend: path is required")
	}

	bs, err := blobFs.NewFSBlobStore(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem blob store: %w", err)
	}
	return bs, nil
}

// createS3BlobStore creates an S3-backed blob store.
func createS3BlobStore(ctx context.Context, options map[string]any) (blob.Store, error) {
	type S3BlobOptions struct {
		Region          string        `mapstructure:"region"`
		Bucket          string        `mapstructure:"bucket"`
		KeyPrefix       string        `mapstructure:"key_prefix"`
		Endpoint        string        `mapstructure:"endpoint"`
		AccessKeyID     string        `mapstructure:"access_key_id"`
		SecretAccessKey string        `mapstructure:"secret_access_key"`
		MaxRetries      int           `mapstructure:"max_retries"`
		PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
	}

	var storeCfg S3BlobOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &storeCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to decode S3 blob config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 blob backend: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 blob backend: region is required")
	}

	client, err := buildS3Client(ctx, storeCfg.Region, storeCfg.Endpoint,
		storeCfg.AccessKeyID, storeCfg.SecretAccessKey, storeCfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	bs, err := blobS3.NewS3BlobStore(ctx, blobS3.S3BlobStoreConfig{
		Client:        client,
		Bucket:        storeCfg.Bucket,
		KeyPrefix:     storeCfg.KeyPrefix,
		PresignExpiry: storeCfg.PresignExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 blob store: %w", err)
	}

	logger.Info("S3 blob backend initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)
	return bs, nil
}

// buildS3Client assembles an S3 client from raw settings.
//
// A custom endpoint (MinIO, Localstack) switches the client to
// path-style addressing. Static credentials, when provided, override the
// default AWS credential chain.
func buildS3Client(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string, maxRetries int) (*s3.Client, error) {
	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(region))

	if endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	if accessKeyID != "" && secretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Retry more aggressively than the AWS default of 3; transient S3
	// failures (502, 503, timeouts) should not surface to users.
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
		}
	}), nil
}

// CreateStore creates a registry backend based on configuration.
//
// Supported types:
//   - "memory": pkg/store/memory (ephemeral)
//   - "badger": pkg/store/badger (persistent)
func CreateStore(ctx context.Context, cfg *RegistryConfig) (store.Store, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return storeMemory.NewMemoryStore(), nil
	case "badger":
		return createBadgerStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown registry backend type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerStore creates a BadgerDB-backed persistent registry.
func createBadgerStore(ctx context.Context, options map[string]any) (store.Store, error) {
	type BadgerStoreOptions struct {
		DBPath string `mapstructure:"db_path"`
	}

	var storeOpts BadgerStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger registry options: %w", err)
	}

	if storeOpts.DBPath == "" {
		return nil, fmt.Errorf("badger registry: db_path is required")
	}

	st, err := storeBadger.NewBadgerStore(ctx, storeOpts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger registry: %w", err)
	}
	return st, nil
}

// CreateDirectory builds the in-memory user directory from seeded users.
func CreateDirectory(users []UserConfig) *identity.MemoryDirectory {
	dir := identity.NewMemoryDirectory()
	for _, u := range users {
		dir.Add(&identity.User{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	return dir
}
