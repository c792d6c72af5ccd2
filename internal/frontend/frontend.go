// Where: internal/frontend/frontend.go
// What: Static site deployment to S3 and CloudFront.
// Why: Frontend builds ship as plain objects with correct types and caching.
package frontend

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/triadops/deploykit/internal/naming"
)

// SiteAPI is the subset of the S3 client used for site uploads.
type SiteAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PutBucketWebsite(ctx context.Context, params *s3.PutBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error)
}

// CDNAPI is the subset of the CloudFront client used for invalidation.
type CDNAPI interface {
	CreateInvalidation(ctx context.Context, params *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
	GetDistribution(ctx context.Context, params *cloudfront.GetDistributionInput, optFns ...func(*cloudfront.Options)) (*cloudfront.GetDistributionOutput, error)
}

// Deployer uploads a built site and invalidates its distribution.
type Deployer struct {
	ProjectName string
	Environment string

	s3  SiteAPI
	cdn CDNAPI
	log log.Interface
	now func() time.Time
}

// NewDeployer builds a Deployer. The CloudFront client may be nil when
// no distribution is configured.
func NewDeployer(s3Client SiteAPI, cdnClient CDNAPI, projectName, environment string, logger log.Interface) *Deployer {
	if logger == nil {
		logger = log.Log
	}
	return &Deployer{
		ProjectName: projectName,
		Environment: environment,
		s3:          s3Client,
		cdn:         cdnClient,
		log:         logger,
		now:         time.Now,
	}
}

// DeployInput selects what to upload and where.
type DeployInput struct {
	BuildDir       string
	Bucket         string
	DistributionID string
	IndexDocument  string
	ErrorDocument  string
}

// DeployResult reports what a deploy did.
type DeployResult struct {
	Bucket             string
	Uploaded           int
	InvalidationID     string
	DistributionDomain string
}

// Deploy uploads every file under BuildDir, applies the website
// configuration, and invalidates the distribution when one is set.
// An empty Bucket falls back to the conventional frontend bucket name.
func (d *Deployer) Deploy(ctx context.Context, input DeployInput) (DeployResult, error) {
	bucket := input.Bucket
	if bucket == "" {
		derived, err := naming.FormatResourceName(d.ProjectName, d.Environment, "frontend")
		if err != nil {
			return DeployResult{}, err
		}
		bucket = derived
	}

	info, err := os.Stat(input.BuildDir)
	if err != nil {
		return DeployResult{}, fmt.Errorf("build directory: %w", err)
	}
	if !info.IsDir() {
		return DeployResult{}, fmt.Errorf("build path %s is not a directory", input.BuildDir)
	}

	uploaded := 0
	err = filepath.WalkDir(input.BuildDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(input.BuildDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if err := d.uploadFile(ctx, bucket, key, path); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		uploaded++
		return nil
	})
	if err != nil {
		return DeployResult{}, err
	}
	d.log.WithField("bucket", bucket).WithField("files", uploaded).Info("uploaded site")

	if err := d.applyWebsiteConfig(ctx, bucket, input); err != nil {
		return DeployResult{}, err
	}

	result := DeployResult{Bucket: bucket, Uploaded: uploaded}
	if input.DistributionID != "" {
		id, err := d.invalidate(ctx, input.DistributionID)
		if err != nil {
			return result, err
		}
		result.InvalidationID = id

		domain, err := d.distributionDomain(ctx, input.DistributionID)
		if err != nil {
			d.log.WithError(err).Warn("could not resolve distribution domain")
		}
		result.DistributionDomain = domain
	}
	return result, nil
}

func (d *Deployer) uploadFile(ctx context.Context, bucket, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = d.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         file,
		ContentType:  aws.String(ContentTypeFor(key)),
		CacheControl: aws.String(CacheControlFor(key)),
	})
	return err
}

func (d *Deployer) applyWebsiteConfig(ctx context.Context, bucket string, input DeployInput) error {
	index := input.IndexDocument
	if index == "" {
		index = "index.html"
	}
	errorDoc := input.ErrorDocument
	if errorDoc == "" {
		errorDoc = "404.html"
	}

	_, err := d.s3.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(bucket),
		WebsiteConfiguration: &types.WebsiteConfiguration{
			IndexDocument: &types.IndexDocument{Suffix: aws.String(index)},
			ErrorDocument: &types.ErrorDocument{Key: aws.String(errorDoc)},
		},
	})
	if err != nil {
		return fmt.Errorf("apply website config: %w", err)
	}
	return nil
}

func (d *Deployer) invalidate(ctx context.Context, distributionID string) (string, error) {
	reference := fmt.Sprintf("%s-%s-%d", d.ProjectName, d.Environment, d.now().Unix())
	resp, err := d.cdn.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(distributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(reference),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(1),
				Items:    []string{"/*"},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create invalidation: %w", err)
	}

	id := ""
	if resp.Invalidation != nil {
		id = aws.ToString(resp.Invalidation.Id)
	}
	d.log.WithField("distribution", distributionID).WithField("invalidation", id).Info("invalidated distribution")
	return id, nil
}

func (d *Deployer) distributionDomain(ctx context.Context, distributionID string) (string, error) {
	resp, err := d.cdn.GetDistribution(ctx, &cloudfront.GetDistributionInput{Id: aws.String(distributionID)})
	if err != nil {
		return "", err
	}
	if resp.Distribution == nil {
		return "", nil
	}
	return aws.ToString(resp.Distribution.DomainName), nil
}

// WebsiteURL returns the S3 static website endpoint for the bucket.
func WebsiteURL(bucket, region string) string {
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com", bucket, region)
}

var contentTypes = map[string]string{
	".html":        "text/html; charset=utf-8",
	".css":         "text/css; charset=utf-8",
	".js":          "application/javascript",
	".mjs":         "application/javascript",
	".json":        "application/json",
	".webmanifest": "application/manifest+json",
	".xml":         "application/xml",
	".txt":         "text/plain; charset=utf-8",
	".svg":         "image/svg+xml",
	".png":         "image/png",
	".jpg":         "image/jpeg",
	".jpeg":        "image/jpeg",
	".gif":         "image/gif",
	".ico":         "image/x-icon",
	".webp":        "image/webp",
	".avif":        "image/avif",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".otf":         "font/otf",
	".map":         "application/json",
	".wasm":        "application/wasm",
	".pdf":         "application/pdf",
	".mp4":         "video/mp4",
}

// ContentTypeFor resolves the Content-Type for an object key.
func ContentTypeFor(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// CacheControlFor resolves the Cache-Control for an object key.
// Fingerprinted build output is immutable; HTML always revalidates.
func CacheControlFor(key string) string {
	if strings.HasPrefix(key, "_next/static/") || strings.HasPrefix(key, "static/") || strings.HasPrefix(key, "assets/") {
		return "public, max-age=31536000, immutable"
	}
	switch {
	case strings.HasSuffix(key, ".html"):
		return "no-cache, no-store, must-revalidate"
	case strings.HasSuffix(key, ".json"):
		return "public, max-age=3600"
	}
	return "public, max-age=86400"
}
