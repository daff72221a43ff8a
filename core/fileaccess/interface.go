// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package fileaccess

import "strings"

// Generic interface for reading/writing the files the tools consume and produce.
// Archives, area definitions and output images may live on the local file system
// or in S3, so everything is coded against this interface.

// Besides just needing a path, we may need a bucket or root directory at the start of a path.
type FileAccess interface {
	ListObjects(bucket string, prefix string) ([]string, error)
	ObjectExists(bucket string, path string) (bool, error)

	ReadObject(bucket string, path string) ([]byte, error)
	WriteObject(bucket string, path string, data []byte) error

	ReadJSON(bucket string, path string, itemsPtr interface{}, emptyIfNotFound bool) error
	WriteJSON(bucket string, path string, itemsPtr interface{}) error

	// Area definition files are YAML
	ReadYAML(bucket string, path string, itemsPtr interface{}) error

	IsNotFoundError(err error) bool
}

const prettyPrintIndentForJSON = "    "

// IsS3Url - does this look like s3://bucket/path
func IsS3Url(url string) bool {
	return strings.HasPrefix(url, "s3://")
}
