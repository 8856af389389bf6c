// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/awsctl/awsctl/internal/log"
)

// presignExpiry bounds how long the remote end has to consume a staging URL.
const presignExpiry = 15 * time.Minute

// Execer runs a command on the remote instance. Satisfied by
// session.Session.
type Execer interface {
	Exec(ctx context.Context, command string) (string, int, error)
}

// Transfer moves files between the local host and an instance through an S3
// staging bucket. The instance side never needs AWS credentials; it only
// sees presigned URLs.
type Transfer struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
}

// New returns a Transfer staging through the named bucket.
func New(client *s3.Client, bucket string) *Transfer {
	return &Transfer{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
	}
}

// Put copies a local file onto the instance. The file is staged in the
// bucket, pulled down by the remote end from a presigned GET URL, and the
// staging object removed.
func (t *Transfer) Put(ctx context.Context, sess Execer, instanceID, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	key := stagingKey(instanceID, localPath)
	log.Debugf("staging upload: bucket=%s, key=%s", t.bucket, key)

	if _, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return fmt.Errorf("staging %s to s3://%s/%s: %w", localPath, t.bucket, key, err)
	}
	defer t.removeStaging(key)

	presigned, err := t.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return fmt.Errorf("presigning GET for %s: %w", key, err)
	}

	return runRemote(ctx, sess, downloadCommand(presigned.URL, remotePath))
}

// Fetch copies a file off the instance. The remote end pushes it to a
// presigned PUT URL, then the staging object is downloaded locally and
// removed.
func (t *Transfer) Fetch(ctx context.Context, sess Execer, instanceID, remotePath, localPath string) error {
	key := stagingKey(instanceID, remotePath)
	log.Debugf("staging download: bucket=%s, key=%s", t.bucket, key)

	presigned, err := t.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return fmt.Errorf("presigning PUT for %s: %w", key, err)
	}

	if err := runRemote(ctx, sess, uploadCommand(presigned.URL, remotePath)); err != nil {
		return err
	}
	defer t.removeStaging(key)

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := t.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("downloading s3://%s/%s: %w", t.bucket, key, err)
	}

	return nil
}

// removeStaging deletes a staging object. Leftovers cost pennies, so a
// failed delete is logged rather than surfaced.
func (t *Transfer) removeStaging(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	}); err != nil {
		log.Warnf("removing staging object s3://%s/%s: %v", t.bucket, key, err)
	}
}

// runRemote executes a command through the session and folds a nonzero exit
// code into the error.
func runRemote(ctx context.Context, sess Execer, command string) error {
	out, rc, err := sess.Exec(ctx, command)
	if err != nil {
		return err
	}
	if rc != 0 {
		return fmt.Errorf("remote command exited %d: %s", rc, strings.TrimSpace(out))
	}
	return nil
}

// stagingKey namespaces staging objects per instance so that concurrent
// copies to different hosts never collide.
func stagingKey(instanceID, path string) string {
	return fmt.Sprintf("%s/%s", instanceID, filepath.Base(path))
}

// downloadCommand fetches a presigned GET URL into place on the remote end.
func downloadCommand(url, remotePath string) string {
	return fmt.Sprintf("curl -sSf -o '%s' '%s'", remotePath, url)
}

// uploadCommand pushes a remote file to a presigned PUT URL.
func uploadCommand(url, remotePath string) string {
	return fmt.Sprintf("curl -sSf --upload-file '%s' '%s'", remotePath, url)
}
