package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploadToS3 uploads content to s3://dest.S3Bucket/dest.S3Prefix/fileName
// using the ambient AWS credential chain.
func uploadToS3(dest Destination, fileName string, content []byte) error {
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	key := fileName
	if dest.S3Prefix != "" {
		key = path.Join(dest.S3Prefix, fileName)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(dest.S3Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("put object s3://%s/%s: %w", dest.S3Bucket, key, err)
	}

	return nil
}
