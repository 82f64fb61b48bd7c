package job

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions treated as job files.
var Extensions = []string{".yaml", ".yml"}

// IsJobFile reports whether path has a job file extension.
func IsJobFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads and parses the job file at path. It does not validate it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes a job file. Unknown keys are rejected.
func Parse(data []byte, path string) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	f := &File{}
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty job file", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	for i, r := range f.Requests {
		if r == nil {
			return nil, fmt.Errorf("%s: request %d is empty", path, i+1)
		}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		setLines(&root, f.Requests)
	}

	return f, nil
}

// setLines copies the line of each item under the top-level requests key.
func setLines(root *yaml.Node, requests []*Request) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != "requests" {
			continue
		}
		items := mapping.Content[i+1].Content
		for j := 0; j < len(items) && j < len(requests); j++ {
			requests[j].Line = items[j].Line
		}
		return
	}
}

// Marshal encodes f as YAML.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CollectFiles expands args into job file paths. Directories are walked recursively.
func CollectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsJobFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
