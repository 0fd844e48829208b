// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blucap/ssrnbib/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Upsert actions.
const (
	ActionNew    = "new"
	ActionUpdate = "update"
)

// ReadAll reads all citations from a JSONL file.
func ReadAll(path string) ([]reference.Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing library is an empty library
		}
		return nil, fmt.Errorf("opening library file: %w", err)
	}
	defer f.Close()

	var cites []reference.Citation
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var c reference.Citation
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		cites = append(cites, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading library file: %w", err)
	}

	return cites, nil
}

// Append adds a citation to the end of a JSONL file.
func Append(path string, c reference.Citation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening library file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding citation: %w", err)
	}
	data = append(data, '\n')

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing citation: %w", err)
	}
	return nil
}

// WriteAll writes all citations to a JSONL file, replacing existing content.
func WriteAll(path string, cites []reference.Citation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating library file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, c := range cites {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding citation %d: %w", i, err)
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing library file: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating library directory: %w", err)
	}
	return nil
}

// FindBySSRNID searches for a citation by SSRN abstract id.
func FindBySSRNID(cites []reference.Citation, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, c := range cites {
		if c.SSRNID == id {
			return i, true
		}
	}
	return -1, false
}

// FindByKey searches for a citation by bib-key.
func FindByKey(cites []reference.Citation, key string) (int, bool) {
	for i, c := range cites {
		if c.Key == key {
			return i, true
		}
	}
	return -1, false
}

// GenerateUniqueKey returns a key that doesn't conflict with existing citations.
// If the base key exists, appends -2, -3, etc.
func GenerateUniqueKey(cites []reference.Citation, baseKey string) string {
	if _, found := FindByKey(cites, baseKey); !found {
		return baseKey
	}

	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseKey, i)
		if _, found := FindByKey(cites, candidate); !found {
			return candidate
		}
	}
}

// Upsert stores c in the library at path. A record with the same SSRN id is
// replaced in place and keeps its key; otherwise c is appended under a unique
// key. The stored citation and the action taken are returned.
func Upsert(path string, c reference.Citation) (reference.Citation, string, error) {
	cites, err := ReadAll(path)
	if err != nil {
		return c, "", err
	}

	if idx, found := FindBySSRNID(cites, c.SSRNID); found {
		c.Key = cites[idx].Key
		cites[idx] = c
		if err := WriteAll(path, cites); err != nil {
			return c, "", err
		}
		return c, ActionUpdate, nil
	}

	c.Key = GenerateUniqueKey(cites, c.Key)
	if err := Append(path, c); err != nil {
		return c, "", err
	}
	return c, ActionNew, nil
}
