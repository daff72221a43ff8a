// Copyright (c) 2018-2022 California Institute of Technology (“Caltech”). U.S.
// Government sponsorship acknowledged.
// All rights reserved.
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
// * Redistributions of source code must retain the above copyright notice, this
//   list of conditions and the following disclaimer.
// * Redistributions in binary form must reproduce the above copyright notice,
//   this list of conditions and the following disclaimer in the documentation
//   and/or other materials provided with the distribution.
// * Neither the name of Caltech nor its operating division, the Jet Propulsion
//   Laboratory, nor the names of its contributors may be used to endorse or
//   promote products derived from this software without specific prior written
//   permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package fileaccess

import (
	"bytes"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gerritholl/fcitools/core/awsutil"
)

func Example_s3ListingWithContinuation() {
	const bucket = "mtg-test-data"
	const listPath = "fci/"

	var mockS3 awsutil.MockS3Client
	defer mockS3.FinishTest()

	mockS3.ExpListObjectsV2Input = []s3.ListObjectsV2Input{
		{
			Bucket: aws.String(bucket), Prefix: aws.String(listPath),
		},
		{
			Bucket: aws.String(bucket), Prefix: aws.String(listPath), ContinuationToken: aws.String("cont-1"),
		},
	}
	mockS3.QueuedListObjectsV2Output = []*s3.ListObjectsV2Output{
		{
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("cont-1"),
			Contents: []*s3.Object{
				{Key: aws.String("fci/")},
				{Key: aws.String("fci/fdhsi-2023.tar.gz")},
				{Key: aws.String("fci/hrfi-2023.tar.gz")},
			},
		},
		{
			IsTruncated: aws.Bool(false),
			Contents: []*s3.Object{
				{Key: aws.String("fci/areas.yaml")},
			},
		},
	}

	fs := MakeS3Access(&mockS3)
	list, err := fs.ListObjects(bucket, listPath)
	fmt.Printf("%v, list: %v\n", err, list)

	// Output:
	// <nil>, list: [fci/fdhsi-2023.tar.gz fci/hrfi-2023.tar.gz fci/areas.yaml]
}

func Example_s3ReadWrite() {
	const bucket = "mtg-test-data"

	var mockS3 awsutil.MockS3Client
	defer mockS3.FinishTest()

	mockS3.ExpGetObjectInput = []s3.GetObjectInput{
		{Bucket: aws.String(bucket), Key: aws.String("cache/manifest.json")},
		{Bucket: aws.String(bucket), Key: aws.String("cache/missing.json")},
	}
	mockS3.QueuedGetObjectOutput = []*s3.GetObjectOutput{
		{Body: io.NopCloser(bytes.NewReader([]byte(`{"archive": "x.tar", "files": ["a.nc"]}`)))},
		nil,
	}
	mockS3.ExpPutObjectInput = []s3.PutObjectInput{
		{Bucket: aws.String(bucket), Key: aws.String("out/image.png"), Body: bytes.NewReader([]byte{1, 2, 3})},
	}
	mockS3.QueuedPutObjectOutput = []*s3.PutObjectOutput{{}}
	mockS3.ExpHeadObjectInput = []s3.HeadObjectInput{
		{Bucket: aws.String(bucket), Key: aws.String("out/image.png")},
		{Bucket: aws.String(bucket), Key: aws.String("out/other.png")},
	}
	mockS3.QueuedHeadObjectOutput = []*s3.HeadObjectOutput{{}, nil}

	fs := MakeS3Access(&mockS3)

	var manifest testManifest
	err := fs.ReadJSON(bucket, "cache/manifest.json", &manifest, false)
	fmt.Printf("%v|%v\n", err, manifest)

	err = fs.ReadJSON(bucket, "cache/missing.json", &manifest, true)
	fmt.Printf("%v\n", err)

	fmt.Printf("%v\n", fs.WriteObject(bucket, "out/image.png", []byte{1, 2, 3}))

	exists, err := fs.ObjectExists(bucket, "out/image.png")
	fmt.Printf("%v|%v\n", exists, err)
	exists, err = fs.ObjectExists(bucket, "out/other.png")
	fmt.Printf("%v|%v\n", exists, err)

	// Output:
	// <nil>|{x.tar [a.nc]}
	// <nil>
	// <nil>
	// true|<nil>
	// false|<nil>
}

func Example_resolve() {
	var mockS3 awsutil.MockS3Client

	loc, err := Resolve("/tmp/out/img.png", nil)
	_, isFS := loc.FS.(*FSAccess)
	fmt.Printf("%v|%v|%v|%v\n", err, isFS, loc.Bucket, loc.Path)

	loc, err = Resolve("s3://bucket/out/img.png", &mockS3)
	_, isS3 := loc.FS.(S3Access)
	fmt.Printf("%v|%v|%v|%v\n", err, isS3, loc.Bucket, loc.Path)

	_, err = Resolve("s3://bucket/out/img.png", nil)
	fmt.Println(err)

	// Output:
	// <nil>|true||/tmp/out/img.png
	// <nil>|true|bucket|out/img.png
	// No S3 client available to access: s3://bucket/out/img.png
}
