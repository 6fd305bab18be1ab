// Copyright (c) 2021 - 2026 Fraunhofer AISEC
// Fraunhofer-Gesellschaft zur Foerderung der angewandten Forschung e.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("service", "internal")

// Tries to retrieve a file from an absolute path, or path relative to
// the optional base path
func GetFile(file string, base *string) ([]byte, error) {
	if file == "" {
		return nil, fmt.Errorf("empty filename passed")
	}
	f, err := GetFilePath(file, base)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %v: %v", f, err)
	}
	return data, nil
}

// Tries to retrieve a filepath from an absolute path, or path relative to
// the working directory or the optional base path
func GetFilePath(file string, base *string) (string, error) {

	if base != nil {
		log.Tracef("Get path of '%v' with optional base path '%v'", file, *base)
	} else {
		log.Tracef("Get path of '%v'", file)
	}

	if path.IsAbs(file) {
		if FileExists(file) {
			log.Tracef("Got: %v (absolute path)", file)
			return file, nil
		}
		return "", fmt.Errorf("failed to find file %v", file)
	}

	var rf string
	var err error
	if base != nil {
		rf, err = filepath.Abs(filepath.Join(*base, file))
		if err == nil && FileExists(rf) {
			log.Tracef("Got: %v (relative to base path)", rf)
			return rf, nil
		}
	}

	f, err := filepath.Abs(file)
	if err == nil && FileExists(f) {
		log.Tracef("Got: %v (relative to working directory)", f)
		return f, nil
	}

	if base == nil {
		return "", fmt.Errorf("failed to find file. Places searched: %v", f)
	}

	return "", fmt.Errorf("failed to find file. Places searched: %v, %v", rf, f)
}

// ReadInput returns the content of the file arg points to, or arg itself
// if no such file exists. Command line inputs such as platform info can so
// be passed inline or as a file.
func ReadInput(arg string) ([]byte, error) {
	if arg == "" {
		return nil, fmt.Errorf("no input specified")
	}
	if FileExists(arg) {
		isDir, err := IsDir(arg)
		if err != nil {
			return nil, err
		}
		if isDir {
			return nil, fmt.Errorf("input %v is a directory", arg)
		}
		log.Debugf("Reading input from file %v", arg)
		return os.ReadFile(arg)
	}
	log.Debugf("Using inline input")
	return []byte(arg), nil
}

func FileExists(f string) bool {
	if _, err := os.Stat(f); err == nil {
		return true
	}
	return false
}

func IsDir(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		return false, fmt.Errorf("failed to get file info: %w", err)
	}

	return info.IsDir(), nil
}
