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

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Implementation of file access using local file system. The bucket is a root directory,
// and may be empty if paths are absolute or relative to the working directory
type FSAccess struct {
}

func (fsa *FSAccess) ListObjects(rootPath string, prefix string) ([]string, error) {
	result := []string{}

	rootOnly := path.Join(rootPath) // Using path.Join to make it match the fullPath cleans off ./ for example
	fullPrefix := fsa.filePath(rootPath, prefix)
	if fullPrefix == "." {
		fullPrefix = ""
	}

	// Prefix may be a directory or a partial file name, like an S3 prefix
	walkFrom := fullPrefix
	if info, err := os.Stat(fullPrefix); err != nil || !info.IsDir() {
		walkFrom = path.Dir(fullPrefix)
	} else if len(fullPrefix) > 0 {
		fullPrefix += "/"
	}

	err := filepath.Walk(walkFrom, func(pathFound string, info os.FileInfo, err error) error {
		if err != nil {
			if fsa.IsNotFoundError(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		found := filepath.ToSlash(pathFound)
		if !strings.HasPrefix(found, fullPrefix) {
			return nil
		}

		// found contains the root directory, so we chop it off
		if len(rootOnly) > 0 && rootOnly != "." && strings.HasPrefix(found, rootOnly+"/") {
			found = found[len(rootOnly)+1:]
		}
		result = append(result, found)
		return nil
	})

	sort.Strings(result)
	return result, err
}

func (fsa *FSAccess) ObjectExists(rootPath string, path string) (bool, error) {
	_, err := os.Stat(fsa.filePath(rootPath, path))
	if err == nil {
		return true, nil
	}
	if fsa.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (fsa *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	fullPath := fsa.filePath(rootPath, path)
	return os.ReadFile(fullPath)
}

func (fsa *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fsa.filePath(rootPath, path)

	// Ensure any subdirs in between are created
	createPath := filepath.Dir(fullPath)
	err := os.MkdirAll(createPath, 0777)
	if err != nil {
		return err
	}

	// Write the file out, this will create if needed else truncate and write
	return os.WriteFile(fullPath, data, 0666)
}

func (fsa *FSAccess) ReadJSON(rootPath string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := fsa.ReadObject(rootPath, path)

	if err != nil {
		if emptyIfNotFound && fsa.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(fileData, itemsPtr)
}

func (fsa *FSAccess) WriteJSON(rootPath string, path string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", prettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return fsa.WriteObject(rootPath, path, fileData)
}

func (fsa *FSAccess) ReadYAML(rootPath string, path string, itemsPtr interface{}) error {
	fileData, err := fsa.ReadObject(rootPath, path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(fileData, itemsPtr)
}

func (fsa *FSAccess) IsNotFoundError(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (fsa *FSAccess) filePath(rootPath string, filePath string) string {
	return path.Join(rootPath, filePath)
}
