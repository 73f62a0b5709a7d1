// Package license prepends license banners to generated source files.
package license

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Processor rewrites the contents of one generated file. path is the file
// being processed and is informational only.
type Processor interface {
	Process(path string, contents string) string
}

// ASL2Header is the Apache License 2.0 banner, followed by a blank line.
const ASL2Header = `/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 * 
 *      http://www.apache.org/licenses/LICENSE-2.0
 * 
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

`

// ASL2 prepends ASL2Header.
type ASL2 struct{}

func (ASL2) Process(_ string, contents string) string {
	return ASL2Header + contents
}

// DefaultPatterns is used by ProcessFiles when no pattern is given.
var DefaultPatterns = []string{"*.go"}

// ProcessFiles applies p to every regular file below root whose base name
// matches one of patterns and rewrites it in place, keeping its mode. Files
// that already start with p's banner (p.Process(path, "")) are skipped. With
// dryRun set nothing is written. It returns the number of files rewritten,
// or that would be rewritten.
func ProcessFiles(root string, patterns []string, p Processor, dryRun bool, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, pat := range patterns {
		if _, err := filepath.Match(pat, ""); err != nil {
			return 0, fmt.Errorf("invalid pattern %q: %w", pat, err)
		}
	}

	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !matches(d.Name(), patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if banner := p.Process(path, ""); banner != "" && strings.HasPrefix(string(data), banner) {
			logger.Debug("license header already present", "file", path)
			return nil
		}

		count++
		if dryRun {
			logger.Info("would add license header", "file", path)
			return nil
		}
		out := p.Process(path, string(data))
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("added license header", "file", path)
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}

func matches(name string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}
