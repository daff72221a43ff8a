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

package logger

import (
	"fmt"
	"strings"
)

// LogLevel - log level type
type LogLevel int

const (
	// LogDebug - DEBUG log level
	LogDebug LogLevel = iota

	// LogInfo - INFO log level
	LogInfo

	// LogError - ERROR log level (does not call os.Exit!)
	LogError
)

var logLevelPrefix = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogError: "ERROR",
}

// ILogger - Generic logger interface, passed to every component that reports progress
type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// LogLevelFromString - parses a configured log level name, case insensitive
func LogLevelFromString(level string) (LogLevel, error) {
	want := strings.ToUpper(strings.TrimSpace(level))
	if want == "" {
		return LogInfo, nil
	}
	if want == "WARN" || want == "WARNING" {
		// No separate warning level, these still need to be seen
		return LogInfo, nil
	}

	for lvl, prefix := range logLevelPrefix {
		if prefix == want {
			return lvl, nil
		}
	}
	return LogInfo, fmt.Errorf("Unknown log level: %v", level)
}

// String - returns the prefix printed for this level
func (l LogLevel) String() string {
	if s, ok := logLevelPrefix[l]; ok {
		return s
	}
	return fmt.Sprintf("LEVEL%v", int(l))
}
