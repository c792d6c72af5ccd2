// Where: internal/rotation/rotation.go
// What: Rotating S3 bucket sequence for Lambda deployment artifacts.
// Why: Keep a bounded history of numbered artifact buckets per project/environment.
package rotation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/triadops/deploykit/internal/meta"
)

// DefaultRetentionCount is how many of the most recent buckets survive cleanup.
const DefaultRetentionCount = 10

// BucketAPI is the subset of the S3 client the manager calls.
// Satisfied by *s3.Client and by fakes in tests.
type BucketAPI interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	ListObjectVersions(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

// Bucket is one member of a rotation sequence. Total is the flattened
// sequence index: Thousands*1000 + Number.
type Bucket struct {
	Name         string
	Thousands    int
	Number       int
	Total        int
	CreationDate time.Time
}

// Config carries the identity of the rotation sequence a Manager owns.
type Config struct {
	ProjectName string
	Environment string
	Region      string
	// AccountID is kept for operator context and tagging audits; the
	// sequence logic never reads it.
	AccountID string
	// Retention overrides DefaultRetentionCount when positive.
	Retention int
	Logger    log.Interface
}

// Manager allocates, reuses, and prunes buckets named
// {project}-lambda-{environment}-{thousands:03d}-{number:03d}.
//
// Not safe for concurrent rotation of the same project/environment pair:
// next-number computation is a read-then-create without reservation. Two
// racing callers converge on one bucket through the idempotent create
// path rather than failing.
type Manager struct {
	ProjectName string
	Environment string
	Region      string
	AccountID   string

	client    BucketAPI
	retention int
	log       log.Interface
}

// NewManager builds a Manager over the provided S3 client.
func NewManager(client BucketAPI, cfg Config) *Manager {
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetentionCount
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Log
	}
	return &Manager{
		ProjectName: cfg.ProjectName,
		Environment: cfg.Environment,
		Region:      cfg.Region,
		AccountID:   cfg.AccountID,
		client:      client,
		retention:   retention,
		log:         logger,
	}
}

// BucketName returns the bucket name for a sequence position.
func (m *Manager) BucketName(thousands, number int) string {
	return fmt.Sprintf("%s-lambda-%s-%03d-%03d", m.ProjectName, m.Environment, thousands, number)
}

func (m *Manager) bucketPrefix() string {
	return fmt.Sprintf("%s-lambda-%s-", m.ProjectName, m.Environment)
}

// ListProjectBuckets returns this pair's rotation buckets sorted ascending
// by sequence index. Listing failures are logged and yield an empty result;
// the callers treat the listing as advisory.
func (m *Manager) ListProjectBuckets(ctx context.Context) []Bucket {
	resp, err := m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		m.log.WithError(err).Error("list buckets")
		return nil
	}

	prefix := m.bucketPrefix()
	var buckets []Bucket
	for _, entry := range resp.Buckets {
		name := aws.ToString(entry.Name)
		thousands, number, ok := parseSequence(name, prefix)
		if !ok {
			continue
		}
		bucket := Bucket{
			Name:      name,
			Thousands: thousands,
			Number:    number,
			Total:     thousands*1000 + number,
		}
		if entry.CreationDate != nil {
			bucket.CreationDate = *entry.CreationDate
		}
		buckets = append(buckets, bucket)
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Total < buckets[j].Total })
	return buckets
}

// parseSequence extracts the two 3-digit groups from a name of the form
// prefix + "ddd-ddd". Anything else, including extra segments or non-digit
// characters, is rejected. Matching on the exact prefix pins the parse to
// this manager's project/environment pair.
func parseSequence(name, prefix string) (thousands, number int, ok bool) {
	rest, found := strings.CutPrefix(name, prefix)
	if !found || len(rest) != 7 || rest[3] != '-' {
		return 0, 0, false
	}
	thousands, ok = atoiDigits(rest[:3])
	if !ok {
		return 0, 0, false
	}
	number, ok = atoiDigits(rest[4:])
	if !ok {
		return 0, 0, false
	}
	return thousands, number, true
}

func atoiDigits(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FindNextBucketNumber computes the next sequence position. The first
// bucket of a pair is (0, 0); afterwards it is always max+1 split into
// thousands and remainder. Numbers freed by cleanup are never reissued.
func (m *Manager) FindNextBucketNumber(ctx context.Context) (thousands, number int) {
	buckets := m.ListProjectBuckets(ctx)
	if len(buckets) == 0 {
		return 0, 0
	}
	next := buckets[len(buckets)-1].Total + 1
	return next / 1000, next % 1000
}

// CreateNextBucket allocates the next bucket in the sequence. An existing
// bucket at the computed position is reused, which makes re-entry after a
// partial deployment safe. Fresh buckets get versioning enabled and the
// rotation tag set applied.
func (m *Manager) CreateNextBucket(ctx context.Context) (string, error) {
	thousands, number := m.FindNextBucketNumber(ctx)
	name := m.BucketName(thousands, number)

	_, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		m.log.WithField("bucket", name).Info("bucket already exists, reusing")
		return name, nil
	}
	if !isNotFound(err) {
		return "", fmt.Errorf("check bucket %s: %w", name, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint.
	if m.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(m.Region),
		}
	}
	if _, err := m.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			m.log.WithField("bucket", name).Info("bucket already owned, reusing")
			return name, nil
		}
		return "", fmt.Errorf("create bucket %s: %w", name, err)
	}

	if _, err := m.client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(name),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	}); err != nil {
		return "", fmt.Errorf("enable versioning on %s: %w", name, err)
	}

	if _, err := m.client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket: aws.String(name),
		Tagging: &types.Tagging{TagSet: []types.Tag{
			{Key: aws.String("Project"), Value: aws.String(m.ProjectName)},
			{Key: aws.String("Environment"), Value: aws.String(m.Environment)},
			{Key: aws.String("Purpose"), Value: aws.String(meta.TagPurposeLambdaDeployment)},
			{Key: aws.String("ManagedBy"), Value: aws.String(meta.TagManagedByRotation)},
		}},
	}); err != nil {
		return "", fmt.Errorf("tag bucket %s: %w", name, err)
	}

	m.log.WithField("bucket", name).Info("created bucket")
	return name, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return true
	}
	// HeadBucket 404s are not always surfaced as a typed error.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "404"
	}
	return false
}

// CleanupOldBuckets deletes every bucket beyond the retention window,
// oldest first. Each candidate is emptied of object versions and delete
// markers before deletion. Failures are logged per bucket and skipped;
// the names actually deleted are returned.
func (m *Manager) CleanupOldBuckets(ctx context.Context) []string {
	buckets := m.ListProjectBuckets(ctx)
	if len(buckets) <= m.retention {
		return nil
	}

	var deleted []string
	for _, bucket := range buckets[:len(buckets)-m.retention] {
		if err := m.emptyBucket(ctx, bucket.Name); err != nil {
			m.log.WithError(err).WithField("bucket", bucket.Name).Error("empty bucket")
			continue
		}
		if _, err := m.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket.Name)}); err != nil {
			m.log.WithError(err).WithField("bucket", bucket.Name).Error("delete bucket")
			continue
		}
		m.log.WithField("bucket", bucket.Name).Info("deleted old bucket")
		deleted = append(deleted, bucket.Name)
	}
	return deleted
}

func (m *Manager) emptyBucket(ctx context.Context, name string) error {
	paginator := s3.NewListObjectVersionsPaginator(m.client, &s3.ListObjectVersionsInput{
		Bucket: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			var noSuchBucket *types.NoSuchBucket
			if errors.As(err, &noSuchBucket) {
				return nil
			}
			return fmt.Errorf("list object versions: %w", err)
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Versions)+len(page.DeleteMarkers))
		for _, version := range page.Versions {
			objects = append(objects, types.ObjectIdentifier{Key: version.Key, VersionId: version.VersionId})
		}
		for _, marker := range page.DeleteMarkers {
			objects = append(objects, types.ObjectIdentifier{Key: marker.Key, VersionId: marker.VersionId})
		}
		if len(objects) == 0 {
			continue
		}

		if _, err := m.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(name),
			Delete: &types.Delete{Objects: objects},
		}); err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
	}
	return nil
}

// GetLatestBucket returns the newest bucket's name, or "" when the pair
// has no buckets yet.
func (m *Manager) GetLatestBucket(ctx context.Context) string {
	buckets := m.ListProjectBuckets(ctx)
	if len(buckets) == 0 {
		return ""
	}
	return buckets[len(buckets)-1].Name
}

// RotateAndCreate is the deployment entry point: provision the next bucket
// and prune the history. When the create step reused an existing bucket
// (the captured latest), cleanup is skipped since nothing rotated. Cleanup
// failures never fail the rotation.
func (m *Manager) RotateAndCreate(ctx context.Context) (string, error) {
	latest := m.GetLatestBucket(ctx)

	name, err := m.CreateNextBucket(ctx)
	if err != nil {
		return "", err
	}

	if latest != "" && name == latest {
		m.log.WithField("bucket", name).Info("reusing existing bucket, skipping cleanup")
		return name, nil
	}

	if deleted := m.CleanupOldBuckets(ctx); len(deleted) > 0 {
		m.log.WithField("count", len(deleted)).Info("cleaned up old buckets")
	}
	return name, nil
}
