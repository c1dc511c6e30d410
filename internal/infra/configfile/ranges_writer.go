package configfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gifts-buyer/internal/domain/ports/repository"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var _ repository.RangeWriter = (*RangesWriter)(nil)

// RangesWriter rewrites gifts.ranges in the YAML config file. Other keys, their order and
// comments are preserved. The file is replaced atomically through a temp file and rename.
type RangesWriter struct {
	path string
	mu   sync.Mutex
	log  *zerolog.Logger
}

func NewRangesWriter(path string, logger *zerolog.Logger) *RangesWriter {
	l := logger.With().Str("component", "RangesWriter").Logger()
	return &RangesWriter{path: path, log: &l}
}

func (w *RangesWriter) WriteRanges(ctx context.Context, encoded string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", w.path, err)
	}
	if err := setScalar(&doc, encoded, "gifts", "ranges"); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := replaceFile(w.path, buf.Bytes()); err != nil {
		return err
	}
	w.log.Debug().Str("path", w.path).Msg("gift ranges persisted")
	return nil
}

// setScalar walks mapping keys along path, creating missing mappings, and sets the leaf
// to a quoted string scalar.
func setScalar(doc *yaml.Node, value string, path ...string) error {
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if doc.Kind != yaml.DocumentNode {
		return errors.New("config is not a YAML document")
	}
	if len(doc.Content) == 0 {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}
	node := doc.Content[0]
	for i, key := range path {
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("config key %q is not a mapping", key)
		}
		var child *yaml.Node
		for j := 0; j+1 < len(node.Content); j += 2 {
			if node.Content[j].Value == key {
				child = node.Content[j+1]
				break
			}
		}
		last := i == len(path)-1
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if last {
				child = &yaml.Node{Kind: yaml.ScalarNode}
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				child,
			)
		}
		if last {
			child.Kind = yaml.ScalarNode
			child.Tag = "!!str"
			child.Style = yaml.DoubleQuotedStyle
			child.Value = value
			child.Content = nil
		}
		node = child
	}
	return nil
}

func replaceFile(path string, data []byte) error {
	mode := os.FileMode(0o600)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
