package objectclient

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/markdave123-py/weddingkb/internal/config"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://weddingkb-uploads.s3.us-east-2.amazonaws.com/uploads/pdf_podcasts/d1/ep.pdf",
		ObjectURL("weddingkb-uploads", "us-east-2", "uploads/pdf_podcasts/d1/ep.pdf"))
}

func TestNewS3Client(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewS3Client(context.Background(), &cfg.Config{AwsRegion: "us-east-2"}, logger)
	assert.Error(t, err)

	_, err = NewS3Client(context.Background(), &cfg.Config{AwsAccessKey: "a", AwsSecretKey: "s"}, logger)
	assert.Error(t, err)

	client, err := NewS3Client(context.Background(), &cfg.Config{
		AwsAccessKey: "a", AwsSecretKey: "s", AwsRegion: "eu-west-1", BucketName: "b",
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", client.(*S3Client).region)
}
