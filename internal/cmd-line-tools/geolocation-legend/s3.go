package main

import (
	"github.com/gerritholl/fcitools/core/awsutil"
	"github.com/gerritholl/fcitools/core/fileaccess"
)

func resolveS3(url string, region string) (fileaccess.Location, error) {
	sess, err := awsutil.GetSessionWithRegion(region)
	if err != nil {
		return fileaccess.Location{}, err
	}
	s3svc, err := awsutil.GetS3(sess)
	if err != nil {
		return fileaccess.Location{}, err
	}
	return fileaccess.Resolve(url, s3svc)
}
