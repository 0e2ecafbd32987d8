package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kennelworks/kennelworks/internal/config"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/logger"
)

// S3Exporter uploads CSV snapshots to an S3 bucket for offsite
// retention.
type S3Exporter struct {
	client *s3.Client
	cfg    config.S3Config
	logger *logger.Logger
}

func NewS3Exporter(cfg config.S3Config, log *logger.Logger) (*S3Exporter, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load AWS configuration").
			Mark(ierr.ErrSystem)
	}

	return &S3Exporter{
		client: s3.NewFromConfig(awsCfg),
		cfg:    cfg,
		logger: log,
	}, nil
}

func (e *S3Exporter) Export(ctx context.Context, snapshot *Snapshot) (string, error) {
	data, err := RenderCSV(snapshot)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("backup_%s.csv", snapshot.TakenAt.UTC().Format("20060102_150405"))
	if e.cfg.KeyPrefix != "" {
		key = e.cfg.KeyPrefix + "/" + key
	}

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to upload the backup to S3").
			WithReportableDetails(map[string]any{"bucket": e.cfg.Bucket, "key": key}).
			Mark(ierr.ErrTransport)
	}

	location := fmt.Sprintf("s3://%s/%s", e.cfg.Bucket, key)
	e.logger.Infow("uploaded backup snapshot",
		"location", location,
		"animals", len(snapshot.Animals))
	return location, nil
}
