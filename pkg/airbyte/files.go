package airbyte

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Actions reported in a Result.
const (
	Extracted = "extracted"
	Created   = "created"
	Updated   = "updated"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

type (
	// Result records what happened to one entity during Export or Import.
	Result struct {
		Resource Resource
		Name     string
		Action   string
		Path     string
	}

	// kind describes how one resource type is stored on disk.
	kind struct {
		resource Resource
		idKey    string
		list     func(*Inventory) *[]Object
	}
)

var (
	sourceKind = kind{Sources, "sourceId", func(i *Inventory) *[]Object { return &i.Sources }}
	destKind   = kind{Destinations, "destinationId", func(i *Inventory) *[]Object { return &i.Destinations }}
	connKind   = kind{Connections, "connectionId", func(i *Inventory) *[]Object { return &i.Connections }}
)

// Export writes one JSON file per connection, source and destination under
// dir/{connections,sources,destinations}. Instance specific ids are dropped;
// connections reference their source and destination by name.
func Export(ctx context.Context, c *Client, dir string) ([]Result, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	var results []Result
	for _, k := range []kind{sourceKind, destKind} {
		used := map[string]bool{}
		for _, obj := range *k.list(&c.Inventory) {
			out := maps.Clone(obj)
			delete(out, k.idKey)
			delete(out, "workspaceId")

			res, err := writeEntity(dir, k.resource, out, used)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
	}

	used := map[string]bool{}
	for _, obj := range c.Inventory.Connections {
		out := maps.Clone(obj)
		delete(out, connKind.idKey)
		c.swapIDForName(out, sourceKind, "sourceName")
		c.swapIDForName(out, destKind, "destinationName")

		res, err := writeEntity(dir, Connections, out, used)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

// Import reads the files written by Export, in JSON or YAML, and creates or
// updates sources and destinations, then connections, matching existing
// entities by name.
func Import(ctx context.Context, c *Client, dir string) ([]Result, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	var results []Result
	for _, k := range []kind{sourceKind, destKind} {
		res, err := c.importKind(ctx, dir, k, func(obj, existing Object) (Object, bool) {
			if existing == nil {
				body := maps.Clone(obj)
				body["workspaceId"] = c.Inventory.WorkspaceID
				return body, false
			}

			return Object{
				k.idKey:                   existing[k.idKey],
				"name":                    obj["name"],
				"connectionConfiguration": obj["connectionConfiguration"],
			}, true
		})
		results = append(results, res...)
		if err != nil {
			return results, err
		}
	}

	res, err := c.importKind(ctx, dir, connKind, func(obj, existing Object) (Object, bool) {
		body := maps.Clone(obj)
		c.swapNameForID(body, sourceKind, "sourceName")
		c.swapNameForID(body, destKind, "destinationName")

		if existing == nil {
			return body, false
		}

		body[connKind.idKey] = existing[connKind.idKey]
		delete(body, "sourceId")
		delete(body, "destinationId")
		return body, true
	})

	return append(results, res...), err
}

func (c *Client) importKind(ctx context.Context, dir string, k kind, build func(obj, existing Object) (Object, bool)) ([]Result, error) {
	files, err := entityFiles(filepath.Join(dir, string(k.resource)))
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, path := range files {
		obj, err := ReadObject(path)
		if err != nil {
			return results, err
		}

		name, _ := obj["name"].(string)
		if name == "" {
			return results, errors.Errorf("%s has no name", path)
		}

		existing, _ := FindByName(*k.list(&c.Inventory), name)
		body, update := build(obj, existing)

		action, call := Created, c.Create
		if update {
			action, call = Updated, c.Update
		}

		saved, err := call(ctx, k.resource, body)
		if err != nil {
			return results, errors.Wrapf(err, "failed to import %s %q", k.resource, name)
		}

		if !update && saved != nil {
			list := k.list(&c.Inventory)
			*list = append(*list, saved)
		}

		results = append(results, Result{Resource: k.resource, Name: name, Action: action, Path: path})
	}

	return results, nil
}

func (c *Client) ensureLoaded(ctx context.Context) error {
	if c.Inventory.WorkspaceID != "" {
		return nil
	}
	return c.Load(ctx)
}

func (c *Client) swapIDForName(obj Object, k kind, nameKey string) {
	id, _ := obj[k.idKey].(string)
	if ref, ok := FindByID(*k.list(&c.Inventory), k.idKey, id); ok {
		delete(obj, k.idKey)
		obj[nameKey] = ref["name"]
	}
}

func (c *Client) swapNameForID(obj Object, k kind, nameKey string) {
	name, _ := obj[nameKey].(string)
	if ref, ok := FindByName(*k.list(&c.Inventory), name); ok {
		delete(obj, nameKey)
		obj[k.idKey] = ref[k.idKey]
	}
}

// writeEntity writes obj under dir/r. Names that slug to a file already
// written in this export get a numeric suffix: orders.json, orders_2.json.
func writeEntity(dir string, r Resource, obj Object, used map[string]bool) (Result, error) {
	name, _ := obj["name"].(string)
	file := FileName(name)
	base := strings.TrimSuffix(file, ".json")
	for n := 2; used[file]; n++ {
		file = fmt.Sprintf("%s_%d.json", base, n)
	}
	used[file] = true

	path := filepath.Join(dir, string(r), file)
	if err := WriteObject(path, obj); err != nil {
		return Result{}, err
	}

	return Result{Resource: r, Name: name, Action: Extracted, Path: path}, nil
}

// FileName derives the file name used for an entity called name.
func FileName(name string) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		slug = "unnamed"
	}
	return slug + ".json"
}

func entityFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || !slices.Contains([]string{".json", ".yml", ".yaml"}, ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	return files, nil
}

// ReadObject reads an entity file. YAML is a superset of JSON, so both
// formats are accepted.
func ReadObject(path string) (Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file: %s", path)
	}

	var obj Object
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if obj == nil {
		return nil, errors.Errorf("%s is empty", path)
	}

	return obj, nil
}

// WriteObject writes obj as indented JSON.
func WriteObject(path string, obj Object) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}

	return errors.Wrapf(os.WriteFile(path, append(data, '\n'), consts.ModeFile), "failed to write file: %s", path)
}
