package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesStore serves assets from a DigitalOcean Spaces bucket through the
// S3 API. Objects follow the same <root>/<category>/<series>/<image>
// layout as LocalStore.
type SpacesStore struct {
	client   *s3.Client
	bucket   string
	cardRoot string
}

func NewSpacesStore(spacesKey, spacesSecret, region, bucket, cardRoot string) (*SpacesStore, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load Spaces config: %w", err)
	}

	return &SpacesStore{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		cardRoot: strings.Trim(cardRoot, "/"),
	}, nil
}

func (s *SpacesStore) Categories(ctx context.Context) ([]string, error) {
	return s.listPrefixes(ctx, s.prefix())
}

func (s *SpacesStore) Series(ctx context.Context, category string) ([]string, error) {
	return s.listPrefixes(ctx, s.prefix(category))
}

func (s *SpacesStore) Images(ctx context.Context, category, series string) ([]string, error) {
	prefix := s.prefix(category, series)

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(*obj.Key, prefix)
			if name != "" && !strings.Contains(name, "/") {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *SpacesStore) Fetch(ctx context.Context, category, series, filename string) ([]byte, error) {
	key := s.prefix(category, series) + filename
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// listPrefixes returns the immediate child "directories" under prefix
// using delimiter-based listing.
func (s *SpacesStore) listPrefixes(ctx context.Context, prefix string) ([]string, error) {
	delimiter := "/"

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    &s.bucket,
		Prefix:    &prefix,
		Delimiter: &delimiter,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list prefixes under %s: %w", prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(*cp.Prefix, prefix), "/")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *SpacesStore) prefix(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if s.cardRoot != "" {
		segments = append(segments, s.cardRoot)
	}
	segments = append(segments, parts...)
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, "/") + "/"
}
