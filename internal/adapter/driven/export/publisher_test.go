package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-compliance-dashboard-go/internal/domain/entity"
	"github.com/diillson/aws-compliance-dashboard-go/internal/shared/types"
)

type fakeS3 struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	bodies  map[string][]byte
	failOn  string
	failErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, f.failErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.bodies == nil {
		f.bodies = map[string][]byte{}
	}
	f.keys = append(f.keys, key)
	f.bodies[key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	f.deleted = append(f.deleted, key)
	delete(f.bodies, key)
	return &s3.DeleteObjectOutput{}, nil
}

func samplePackReports() []entity.PackReport {
	return []entity.PackReport{
		{PackName: "CIS-pack", TotalAccounts: 2, CompliantAccounts: 1, CompliancePercentage: 50},
		{PackName: "OrgConformsPack NIST/def", TotalAccounts: 1},
	}
}

func TestPackKey(t *testing.T) {
	assert.Equal(t, "data/runs/run-1/packs/CIS-pack.json", PackKey("run-1", "CIS-pack"))
	assert.Regexp(t, `^data/runs/run-1/packs/OrgConformsPack_NIST_def-[0-9a-f]{8}\.json$`, PackKey("run-1", "OrgConformsPack NIST/def"))
	assert.Regexp(t, `^data/runs/_/packs/_-[0-9a-f]{8}\.json$`, PackKey("", ""))
	assert.Equal(t, PackKey("run-1", "a b"), PackKey("run-1", "a b"))
}

func TestPackKeyDistinctForNamesThatSanitizeAlike(t *testing.T) {
	keys := map[string]bool{}
	for _, name := range []string{"a_b", "a b", "a/b", "a:b"} {
		keys[PackKey("run-1", name)] = true
	}
	assert.Len(t, keys, 4)
}

func TestS3PublisherWritesPacksThenSummary(t *testing.T) {
	client := &fakeS3{}
	pub := NewS3Publisher(client, "compliance-bucket", "prod")

	location, err := pub.Publish(context.Background(), sampleSnapshot(), samplePackReports())
	require.NoError(t, err)
	assert.Equal(t, "s3://compliance-bucket/prod/data/compliance-summary.json", location)

	cisKey := PackKey("run-1", "CIS-pack")
	nistKey := PackKey("run-1", "OrgConformsPack NIST/def")
	assert.Equal(t, []string{
		"prod/" + cisKey,
		"prod/" + nistKey,
		"prod/data/compliance-summary.json",
	}, client.keys)
	assert.Empty(t, client.deleted)

	var decoded entity.Snapshot
	require.NoError(t, json.Unmarshal(client.bodies["prod/data/compliance-summary.json"], &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, []string{cisKey, nistKey}, decoded.PackReports)
}

func TestS3PublisherDoesNotModifySnapshot(t *testing.T) {
	snapshot := sampleSnapshot()
	_, err := NewS3Publisher(&fakeS3{}, "b", "").Publish(context.Background(), snapshot, samplePackReports())
	require.NoError(t, err)
	assert.Nil(t, snapshot.PackReports)
}

func TestS3PublisherWithoutPrefix(t *testing.T) {
	client := &fakeS3{}
	location, err := NewS3Publisher(client, "b", "").Publish(context.Background(), sampleSnapshot(), nil)
	require.NoError(t, err)
	assert.Equal(t, "s3://b/data/compliance-summary.json", location)
	assert.Equal(t, []string{SummaryKey}, client.keys)
}

func TestS3PublisherFailureLeavesNothingPublished(t *testing.T) {
	tests := []struct {
		name        string
		failOn      string
		wantDeleted []string
	}{
		{
			name:        "summary upload fails",
			failOn:      SummaryKey,
			wantDeleted: []string{PackKey("run-1", "CIS-pack"), PackKey("run-1", "OrgConformsPack NIST/def")},
		},
		{
			name:        "second pack upload fails",
			failOn:      PackKey("run-1", "OrgConformsPack NIST/def"),
			wantDeleted: []string{PackKey("run-1", "CIS-pack")},
		},
		{
			name:   "first pack upload fails",
			failOn: PackKey("run-1", "CIS-pack"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{failOn: tt.failOn, failErr: errors.New("boom")}
			_, err := NewS3Publisher(client, "b", "").Publish(context.Background(), sampleSnapshot(), samplePackReports())

			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrPublishFailed)
			assert.Empty(t, client.bodies)
			assert.ElementsMatch(t, tt.wantDeleted, client.deleted)
		})
	}
}

func TestS3PublisherCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeS3{}
	_, err := NewS3Publisher(client, "b", "").Publish(ctx, sampleSnapshot(), samplePackReports())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.keys)
}

func TestDirPublisher(t *testing.T) {
	root := t.TempDir()
	location, err := NewDirPublisher(root).Publish(context.Background(), sampleSnapshot(), samplePackReports())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "compliance-summary.json"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	var decoded entity.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "org-aggregator", decoded.AggregatorName)
	require.Len(t, decoded.PackReports, 2)

	for _, key := range decoded.PackReports {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(key)))
	}
	tmp, err := filepath.Glob(filepath.Join(root, "data", "runs", "run-1", "packs", ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, tmp)
}

func TestDirPublisherFailureLeavesNothingPublished(t *testing.T) {
	root := t.TempDir()
	// a non-empty directory where the snapshot goes makes the final rename fail
	blocker := filepath.Join(root, "data", "compliance-summary.json")
	require.NoError(t, os.MkdirAll(blocker, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0644))

	_, err := NewDirPublisher(root).Publish(context.Background(), sampleSnapshot(), samplePackReports())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPublishFailed)

	left, err := filepath.Glob(filepath.Join(root, "data", "runs", "run-1", "packs", "*"))
	require.NoError(t, err)
	assert.Empty(t, left)
	hidden, err := filepath.Glob(filepath.Join(root, "data", ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestDirPublisherCanceledContext(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirPublisher(root).Publish(ctx, sampleSnapshot(), samplePackReports())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPublishFailed)
	assert.NoFileExists(t, filepath.Join(root, "data", "compliance-summary.json"))
}
