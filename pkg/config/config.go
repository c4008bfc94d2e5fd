package config

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/datacoves/dbt-coves/pkg/yamlutil"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

type (
	// Settings holds the key/value pairs configured for a single task.
	Settings = orderedmap.OrderedMap[string, any]

	// Group maps task names to their settings, e.g. the "setup" group.
	Group = orderedmap.OrderedMap[string, *Settings]

	// Document is the full project config: group -> task -> setting. Key order
	// is preserved from the file so Save writes groups back in place.
	Document = orderedmap.OrderedMap[string, *Group]

	// Store is the project configuration for one invocation.
	//
	// The document is read lazily on first access and cached; a Store never
	// reads its file more than once, whether the read succeeded or not.
	Store struct {
		fsys fs.FS
		dir  string

		once sync.Once
		name string
		doc  *Document
		err  error
	}
)

// Candidates lists the config file locations, relative to the config dir, in
// lookup order.
var Candidates = []string{
	consts.ConfigFileName,
	path.Join(consts.ConfigDirName, consts.NestedConfigFileName),
}

// Open returns a Store backed by the config directory dir on disk.
func Open(dir string) *Store {
	return New(os.DirFS(dir), dir)
}

// New returns a Store reading from fsys. dir is the on-disk location of fsys,
// used in error messages and by Save; it may be empty for read-only stores.
func New(fsys fs.FS, dir string) *Store {
	return &Store{fsys: fsys, dir: dir, name: Candidates[0]}
}

// Path reports the config file location. Before a successful Load it is the
// primary candidate.
func (s *Store) Path() string {
	if s.dir == "" {
		return s.name
	}
	return filepath.Join(s.dir, filepath.FromSlash(s.name))
}

// Load reads and parses the config file on first call. Subsequent calls
// return the cached document or error.
//
// Example:
//
//	store := config.Open(".")
//	if _, err := store.Load(); err != nil {
//		return err // *MissingError, *EmptyError or *InvalidError
//	}
func (s *Store) Load() (*Document, error) {
	s.once.Do(func() {
		s.doc, s.err = s.read()
	})

	return s.doc, s.err
}

func (s *Store) read() (*Document, error) {
	var data []byte
	found := false
	for _, name := range Candidates {
		b, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		s.name = name
		if err != nil {
			return nil, &InvalidError{Path: s.Path(), Err: err}
		}

		data, found = b, true
		break
	}

	if !found {
		return nil, &MissingError{Path: s.Path()}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &EmptyError{Path: s.Path()}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &InvalidError{Path: s.Path(), Err: err}
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return nil, &EmptyError{Path: s.Path()}
	}
	if err := checkShape(&root); err != nil {
		return nil, &InvalidError{Path: s.Path(), Err: err}
	}

	doc := orderedmap.New[string, *Group]()
	if err := root.Decode(doc); err != nil {
		return nil, &InvalidError{Path: s.Path(), Err: err}
	}

	if doc.Len() == 0 {
		return nil, &EmptyError{Path: s.Path()}
	}

	return doc, nil
}

// checkShape verifies the document nests mappings three levels deep: group,
// then task, then setting. Null values are allowed at the first two levels.
func checkShape(root *yaml.Node) error {
	top := root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if isNull(top) {
		return nil
	}
	if top.Kind != yaml.MappingNode {
		return shapeError("the top level", top)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		group, tasks := top.Content[i].Value, top.Content[i+1]
		if isNull(tasks) {
			continue
		}
		if tasks.Kind != yaml.MappingNode {
			return shapeError(fmt.Sprintf("group %q", group), tasks)
		}

		for j := 0; j+1 < len(tasks.Content); j += 2 {
			task, settings := tasks.Content[j].Value, tasks.Content[j+1]
			if !isNull(settings) && settings.Kind != yaml.MappingNode {
				return shapeError(fmt.Sprintf("task %q", group+"."+task), settings)
			}
		}
	}

	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func shapeError(where string, n *yaml.Node) error {
	found := map[yaml.Kind]string{
		yaml.SequenceNode: "a list",
		yaml.ScalarNode:   "a scalar",
		yaml.AliasNode:    "an alias",
	}[n.Kind]
	return errors.Errorf("line %d: %s must be a mapping (group -> task -> setting), found %s", n.Line, where, found)
}

// Section returns the settings for group.task. It fails with
// *KeyMissingError when either level is absent.
func (s *Store) Section(group, task string) (*Settings, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	g, ok := doc.Get(group)
	if !ok || g == nil {
		return nil, &KeyMissingError{Path: s.Path(), Keys: []string{group, task}}
	}

	settings, ok := g.Get(task)
	if !ok || settings == nil {
		return nil, &KeyMissingError{Path: s.Path(), Keys: []string{group, task}}
	}

	return settings, nil
}

// Get returns the value stored at group.task.key exactly as decoded from the
// file. Missing keys at any level fail with *KeyMissingError naming all three
// keys.
func (s *Store) Get(group, task, key string) (any, error) {
	settings, err := s.Section(group, task)
	if err != nil {
		var missing *KeyMissingError
		if errors.As(err, &missing) {
			missing.Keys = []string{group, task, key}
		}
		return nil, err
	}

	v, ok := settings.Get(key)
	if !ok {
		return nil, &KeyMissingError{Path: s.Path(), Keys: []string{group, task, key}}
	}

	return v, nil
}

// Lookup is Get with a caller supplied default for missing keys. Load errors
// are still returned.
func (s *Store) Lookup(group, task, key string, def any) (any, error) {
	v, err := s.Get(group, task, key)
	if err != nil {
		var missing *KeyMissingError
		if errors.As(err, &missing) {
			return def, nil
		}
		return nil, err
	}

	return v, nil
}

// Decode copies the group.task section into out, matching settings to
// fields by their yaml tag. A missing section leaves out untouched so callers
// can prefill defaults.
func (s *Store) Decode(group, task string, out any) error {
	settings, err := s.Section(group, task)
	if err != nil {
		var missing *KeyMissingError
		if errors.As(err, &missing) {
			return nil
		}
		return err
	}

	input := make(map[string]any, settings.Len())
	for pair := settings.Oldest(); pair != nil; pair = pair.Next() {
		input[pair.Key] = pair.Value
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := dec.Decode(input); err != nil {
		return &InvalidError{Path: s.Path(), Err: errors.Wrapf(err, "section %s.%s", group, task)}
	}

	return nil
}

// Set stores value at group.task.key, creating intermediate levels. A store
// whose file is missing or empty starts from an empty document.
func (s *Store) Set(group, task, key string, value any) error {
	doc, err := s.Load()
	if err != nil {
		var (
			missing *MissingError
			empty   *EmptyError
		)
		if !errors.As(err, &missing) && !errors.As(err, &empty) {
			return err
		}

		doc = orderedmap.New[string, *Group]()
		s.doc, s.err = doc, nil
	}

	g, ok := doc.Get(group)
	if !ok || g == nil {
		g = orderedmap.New[string, *Settings]()
		doc.Set(group, g)
	}

	settings, ok := g.Get(task)
	if !ok || settings == nil {
		settings = orderedmap.New[string, any]()
		g.Set(task, settings)
	}

	settings.Set(key, value)
	return nil
}

// Save writes the document back to the file it was loaded from, or to the
// primary location when there was none.
func (s *Store) Save() error {
	if s.dir == "" {
		return errors.New("config store has no directory to save to")
	}

	doc, err := s.Load()
	if err != nil {
		return err
	}

	return yamlutil.Save(s.Path(), doc)
}
