package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/danthegoodman1/tdastore/utils"
	"github.com/rs/zerolog"
)

const s3RetryWindow = 30 * time.Second

type (
	S3Config struct {
		Bucket   string
		Region   string
		Endpoint string
	}

	S3DataStore struct {
		bucket     string
		uploader   *s3manager.Uploader
		downloader *s3manager.Downloader
	}
)

func NewS3DataStore(cfg S3Config) (*S3DataStore, error) {
	if cfg.Bucket == "" {
		return nil, utils.PermError("missing S3 bucket name")
	}
	s3Config := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewEnvCredentials(),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	return &S3DataStore{
		bucket:     cfg.Bucket,
		uploader:   s3manager.NewUploader(s3Session),
		downloader: s3manager.NewDownloader(s3Session),
	}, nil
}

func (sds *S3DataStore) WriteFile(ctx context.Context, key string, r io.ReadSeeker, contentType string) error {
	logger := zerolog.Ctx(ctx)
	s := time.Now()
	err := utils.Retry(ctx, s3RetryWindow, func(ctx context.Context) error {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return utils.PermError(fmt.Sprintf("error rewinding upload body: %s", err))
		}
		input := &s3manager.UploadInput{
			Bucket: aws.String(sds.bucket),
			Key:    aws.String(key),
			Body:   r,
		}
		if contentType != "" {
			input.ContentType = aws.String(contentType)
		}
		_, err := sds.uploader.UploadWithContext(ctx, input)
		return err
	})
	if err != nil {
		return fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")
	return nil
}

func (sds *S3DataStore) ReadFile(ctx context.Context, key string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	var buf *aws.WriteAtBuffer

	s := time.Now()
	err := utils.Retry(ctx, s3RetryWindow, func(ctx context.Context) error {
		buf = &aws.WriteAtBuffer{}
		_, err := sds.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
			Bucket: aws.String(sds.bucket),
			Key:    aws.String(key),
		})
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return ErrNotExist
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error downloading from s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("downloaded file from s3")
	return buf.Bytes(), nil
}

func (sds *S3DataStore) Shutdown(context.Context) error {
	return nil
}
