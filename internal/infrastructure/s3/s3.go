package s3

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/domain/user"
	"filevault-api/internal/upload"
)

type Client struct {
	logger  *zap.Logger
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,
) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// MinIO and friends
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("s3 client configured", zap.String("bucket", cfg.BucketUploads))

	return &Client{
		logger:  logger,
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.BucketUploads,
	}, nil
}

// buildStorageKey: "users/<owner>/YYYY/MM/DD/<uuid>/<filename>"
func buildStorageKey(fileName string, ownerID user.ID) string {
	now := time.Now().UTC()
	return fmt.Sprintf(
		"users/%d/%04d/%02d/%02d/%s/%s",
		ownerID,
		now.Year(), int(now.Month()), now.Day(),
		uuid.New(),
		fileName,
	)
}

func (c *Client) InitMultipart(ctx context.Context, fileName string, ownerID user.ID) (*ports.MultipartInit, error) {
	key := buildStorageKey(fileName, ownerID)

	out, err := c.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("create multipart upload: %w", err)
	}

	return &ports.MultipartInit{
		UploadID: aws.ToString(out.UploadId),
		Key:      key,
	}, nil
}

func (c *Client) UploadPart(ctx context.Context, uploadID, key string, partNumber int32, body []byte) (string, error) {
	out, err := c.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return "", fmt.Errorf("upload part %d: %w", partNumber, err)
	}

	return aws.ToString(out.ETag), nil
}

func (c *Client) CompleteMultipart(ctx context.Context, uploadID, key string, parts []upload.Part) (*ports.CompletedObject, error) {
	completed := make([]types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = types.CompletedPart{
			PartNumber: aws.Int32(p.Number),
			ETag:       aws.String(p.ETag),
		}
	}

	out, err := c.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("complete multipart upload: %w", err)
	}

	return &ports.CompletedObject{
		Key: key,
		URL: aws.ToString(out.Location),
	}, nil
}

func (c *Client) AbortMultipart(ctx context.Context, uploadID, key string) error {
	_, err := c.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return fmt.Errorf("abort multipart upload: %w", err)
	}

	return nil
}

func (c *Client) DeleteObjects(ctx context.Context, keys []string) (*ports.BlobDeleteResult, error) {
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	out, err := c.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(c.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(false),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("delete objects: %w", err)
	}

	res := &ports.BlobDeleteResult{}
	for _, d := range out.Deleted {
		res.Deleted = append(res.Deleted, aws.ToString(d.Key))
	}
	for _, e := range out.Errors {
		res.Failed = append(res.Failed, ports.BlobDeleteError{
			Key:    aws.ToString(e.Key),
			Reason: fmt.Sprintf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message)),
		})
	}

	return res, nil
}

func (c *Client) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	return req.URL, nil
}
