package fileaccess

import (
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// Location - a file access implementation plus the bucket/root and path to use with it
type Location struct {
	FS     FileAccess
	Bucket string
	Path   string
}

// Resolve - works out where a user supplied path lives. s3://bucket/path goes through S3 (an
// error if no client is given), anything else is a local path with an empty root
func Resolve(url string, s3Api s3iface.S3API) (Location, error) {
	if !IsS3Url(url) {
		return Location{FS: &FSAccess{}, Bucket: "", Path: url}, nil
	}

	if s3Api == nil {
		return Location{}, errors.Errorf("No S3 client available to access: %v", url)
	}

	bucket, err := GetBucketFromS3Url(url)
	if err != nil {
		return Location{}, err
	}
	p, err := GetPathFromS3Url(url)
	if err != nil {
		return Location{}, err
	}

	return Location{FS: MakeS3Access(s3Api), Bucket: bucket, Path: p}, nil
}
