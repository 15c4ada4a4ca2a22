package s3

import (
	"context"
	"fmt"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ListObjectsV2API is the part of *s3.Client the lister needs.
type ListObjectsV2API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Lister serves one ListObjectsV2 page per call. The caller drives the
// pagination loop with the returned continuation token.
type Lister struct {
	client  ListObjectsV2API
	bucket  string
	maxKeys int32
}

func NewLister(client ListObjectsV2API, bucket string) *Lister {
	return &Lister{client: client, bucket: bucket, maxKeys: 1000}
}

var _ ports.ObjectListerPort = (*Lister)(nil)

// NewClient builds an S3 client from the default credential chain. A
// non-empty endpoint switches to path-style addressing for S3-compatible
// stores.
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (l *Lister) List(ctx context.Context, prefix, continuationToken string) (ports.ListPage, error) {
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(l.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(l.maxKeys),
	}
	if continuationToken != "" {
		in.ContinuationToken = aws.String(continuationToken)
	}

	out, err := l.client.ListObjectsV2(ctx, in)
	if err != nil {
		return ports.ListPage{}, err
	}

	page := ports.ListPage{
		Keys:        make([]string, 0, len(out.Contents)),
		IsTruncated: aws.ToBool(out.IsTruncated),
		NextToken:   aws.ToString(out.NextContinuationToken),
	}
	for _, obj := range out.Contents {
		if k := aws.ToString(obj.Key); k != "" {
			page.Keys = append(page.Keys, k)
		}
	}
	return page, nil
}
