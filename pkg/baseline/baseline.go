// Package baseline saves weak pointer count snapshots and reports drift against them.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Metadata keys recorded by SetTracking.
const (
	MetaEnabled           = "enabled"
	MetaStackdumpInterval = "stackdump_interval"
)

// Baseline is a named snapshot of a bean's counts. Metadata holds the bean's
// tracking attributes at save time.
type Baseline struct {
	Name      string            `json:"name"`
	Timestamp time.Time         `json:"timestamp"`
	Hostname  string            `json:"hostname"`
	Bean      string            `json:"bean"`
	Entries   []track.Entry     `json:"entries"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DefaultDir returns the default baseline storage directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".weaktrack/baselines"
	}
	return filepath.Join(home, ".weaktrack", "baselines")
}

// validName rejects names that would escape the baseline directory.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid baseline name %q", name)
	}
	return nil
}

// Save writes a baseline to a JSON file.
func (b *Baseline) Save(dir string) error {
	if err := validName(b.Name); err != nil {
		return err
	}
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create baseline directory: %w", err)
	}

	path := filepath.Join(dir, b.Name+".json")
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write baseline: %w", err)
	}
	return nil
}

// Load reads a baseline from a JSON file.
func Load(name, dir string) (*Baseline, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = DefaultDir()
	}
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read baseline %q: %w", name, err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("cannot parse baseline: %w", err)
	}
	return &b, nil
}

// List returns all saved baseline names in sorted order.
func List(dir string) ([]string, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	slices.Sort(names)
	return names, nil
}

// NewBaseline creates a new baseline from a snapshot.
func NewBaseline(name, bean string, entries []track.Entry) *Baseline {
	hostname, _ := os.Hostname()
	entries = slices.Clone(entries)
	track.Sort(entries, track.OrderByName)
	return &Baseline{
		Name:      name,
		Timestamp: time.Now(),
		Hostname:  hostname,
		Bean:      bean,
		Entries:   entries,
	}
}

// SetTracking records the bean's tracking attributes in the metadata.
func (b *Baseline) SetTracking(enabled bool, stackdumpInterval int) {
	if b.Metadata == nil {
		b.Metadata = make(map[string]string, 2)
	}
	b.Metadata[MetaEnabled] = strconv.FormatBool(enabled)
	b.Metadata[MetaStackdumpInterval] = strconv.Itoa(stackdumpInterval)
}
