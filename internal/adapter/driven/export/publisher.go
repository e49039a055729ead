package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

// Object keys relative to the optional prefix.
const (
	SummaryKey = "data/compliance-summary.json"
	RunsDir    = "data/runs"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitize(name string) string {
	name = unsafeKeyChars.ReplaceAllString(name, "_")
	if name == "" {
		return "_"
	}
	return name
}

// PackKey returns the object key of a pack report published by run runID.
// Names changed by sanitizing get a short hash of the raw name so that
// "a b" and "a/b" never share a key.
func PackKey(runID, packName string) string {
	name := sanitize(packName)
	if name != packName {
		sum := sha256.Sum256([]byte(packName))
		name += "-" + hex.EncodeToString(sum[:4])
	}
	return path.Join(RunsDir, sanitize(runID), "packs", name+".json")
}

type document struct {
	key  string
	body []byte
}

// documents renders the pack reports of the run and, last, the consolidated
// snapshot listing their keys. The caller's snapshot is not modified.
func documents(snapshot *entity.Snapshot, packReports []entity.PackReport) ([]document, error) {
	docs := make([]document, 0, len(packReports)+1)
	keys := make([]string, 0, len(packReports))
	for _, report := range packReports {
		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding pack report %s: %w", report.PackName, err)
		}
		key := PackKey(snapshot.RunID, report.PackName)
		docs = append(docs, document{key: key, body: body})
		keys = append(keys, key)
	}

	published := *snapshot
	published.PackReports = keys
	body, err := json.MarshalIndent(&published, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(docs, document{key: SummaryKey, body: body}), nil
}

// S3ObjectAPI is the part of the S3 client used by the publisher.
type S3ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Publisher writes the run documents to an S3 bucket.
type S3Publisher struct {
	client    S3ObjectAPI
	bucket    string
	keyPrefix string
}

// NewS3Publisher creates a publisher for bucket, with keys under keyPrefix.
func NewS3Publisher(client S3ObjectAPI, bucket, keyPrefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, keyPrefix: keyPrefix}
}

func (p *S3Publisher) objectKey(key string) string {
	if p.keyPrefix == "" {
		return key
	}
	return path.Join(p.keyPrefix, key)
}

// Publish uploads the pack reports under the run's own prefix and then the
// consolidated snapshot. The snapshot upload commits the run: if any upload
// fails, the objects already uploaded by this call are deleted again.
func (p *S3Publisher) Publish(ctx context.Context, snapshot *entity.Snapshot, packReports []entity.PackReport) (string, error) {
	logger := zerolog.Ctx(ctx)

	docs, err := documents(snapshot, packReports)
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}

	uploaded := make([]string, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			p.rollback(ctx, uploaded)
			return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
		}
		key := p.objectKey(doc.key)
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(doc.body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			p.rollback(ctx, uploaded)
			return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, types.NewSourceError("put_object", key, err))
		}
		uploaded = append(uploaded, key)
		logger.Debug().Str("bucket", p.bucket).Str("key", key).Int("bytes", len(doc.body)).Msg("uploaded document")
	}

	location := fmt.Sprintf("s3://%s/%s", p.bucket, p.objectKey(SummaryKey))
	logger.Info().Str("location", location).Int("pack_reports", len(packReports)).Msg("snapshot published")
	return location, nil
}

// rollback deletes the objects of an uncommitted run. It runs even when ctx
// was canceled.
func (p *S3Publisher) rollback(ctx context.Context, keys []string) {
	logger := zerolog.Ctx(ctx)
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			logger.Error().Err(err).Str("bucket", p.bucket).Str("key", key).Msg("failed to remove document of unpublished run")
			continue
		}
		logger.Debug().Str("bucket", p.bucket).Str("key", key).Msg("removed document of unpublished run")
	}
}

// DirPublisher writes the run documents below a local directory.
type DirPublisher struct {
	root string
}

// NewDirPublisher creates a publisher rooted at dir.
func NewDirPublisher(dir string) *DirPublisher {
	return &DirPublisher{root: dir}
}

// Publish writes every document to a temporary file first. Only when all of
// them are written are the pack reports renamed into place, and the snapshot
// last. A failure removes whatever this call created.
func (p *DirPublisher) Publish(ctx context.Context, snapshot *entity.Snapshot, packReports []entity.PackReport) (string, error) {
	docs, err := documents(snapshot, packReports)
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}

	staged := make([]stagedFile, 0, len(docs))
	discard := func() {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			discard()
			return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
		}
		target := filepath.Join(p.root, filepath.FromSlash(doc.key))
		tmp, err := writeTemp(target, doc.body)
		if err != nil {
			discard()
			return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
		}
		staged = append(staged, stagedFile{tmp: tmp, target: target})
	}

	if err := ctx.Err(); err != nil {
		discard()
		return "", fmt.Errorf("%w: %w", types.ErrPublishFailed, err)
	}

	for i, f := range staged {
		if err := os.Rename(f.tmp, f.target); err != nil {
			for _, done := range staged[:i] {
				os.Remove(done.target)
			}
			for _, pending := range staged[i:] {
				os.Remove(pending.tmp)
			}
			return "", fmt.Errorf("%w: error renaming %s: %w", types.ErrPublishFailed, f.target, err)
		}
	}

	summaryPath := staged[len(staged)-1].target
	abs, err := filepath.Abs(summaryPath)
	if err != nil {
		abs = summaryPath
	}
	zerolog.Ctx(ctx).Info().Str("location", abs).Int("pack_reports", len(packReports)).Msg("snapshot written")
	return abs, nil
}

type stagedFile struct {
	tmp    string
	target string
}

// writeTemp writes body to a hidden temporary file next to target and
// returns its name.
func writeTemp(target string, body []byte) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating directory '%s': %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("error writing %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("error closing %s: %w", target, err)
	}
	return tmpName, nil
}
