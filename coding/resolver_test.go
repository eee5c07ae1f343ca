package coding

import (
	"errors"
	"testing"

	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
)

type fakePathSource struct {
	paths      []entities.HierarchyPath
	primaryTop string
	version    int64
	pathsErr   error
	insertErr  error
	inserted   *entities.Coding
}

func (f *fakePathSource) EnumeratePaths(d entities.Dictionary, code string, versionID int64) ([]entities.HierarchyPath, string, int64, error) {
	return f.paths, f.primaryTop, f.version, f.pathsErr
}

func (f *fakePathSource) InsertCoding(c *entities.Coding) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = c
	return nil
}

func path(codes ...string) entities.HierarchyPath {
	levels := make([]entities.PathLevel, len(codes))
	for i, c := range codes {
		levels[i] = entities.PathLevel{Code: c, Name: "term " + c}
	}
	return entities.HierarchyPath{Levels: levels}
}

func TestCodeSelectsPrimaryByTopCode(t *testing.T) {
	source := &fakePathSource{
		paths: []entities.HierarchyPath{
			path("SOC-2", "PT-1", "LLT-1"),
			path("SOC-1", "PT-1", "LLT-1"),
		},
		primaryTop: "SOC-1",
		version:    7,
	}
	resolver := NewResolver(source)

	res, err := resolver.Code(entities.DictionaryMedDRA, "LLT-1", "verbatim text", "coder-1", 0)
	if err != nil {
		t.Fatalf("Code failed: %v", err)
	}

	if res.Paths[0].IsPrimaryPath {
		t.Error("Expected the non-designated path to stay secondary")
	}
	if !res.Paths[1].IsPrimaryPath {
		t.Error("Expected the path topping at the designated code to be primary")
	}
	if res.Coding.Path[0].Code != "SOC-1" {
		t.Errorf("Expected the record to carry the primary path, got top %q", res.Coding.Path[0].Code)
	}
	if res.Coding.VersionID != 7 {
		t.Errorf("Expected resolved version 7, got %d", res.Coding.VersionID)
	}
	if res.Coding.Verbatim != "verbatim text" || res.Coding.CoderID != "coder-1" {
		t.Errorf("Unexpected record fields: %+v", res.Coding)
	}
	if res.Coding.ID == "" {
		t.Error("Expected a generated coding id")
	}
	if res.Coding.CreatedAt.IsZero() {
		t.Error("Expected a creation timestamp")
	}
}

func TestCodeFallsBackToFirstPath(t *testing.T) {
	source := &fakePathSource{
		paths: []entities.HierarchyPath{
			path("SOC-2", "PT-1"),
			path("SOC-3", "PT-1"),
		},
		primaryTop: "SOC-9", // designated SOC absent from every path
	}
	resolver := NewResolver(source)

	res, err := resolver.Code(entities.DictionaryMedDRA, "PT-1", "v", "", 0)
	if err != nil {
		t.Fatalf("Code failed: %v", err)
	}
	if !res.Paths[0].IsPrimaryPath {
		t.Error("Expected the first path to stand in as primary")
	}
	if res.Paths[1].IsPrimaryPath {
		t.Error("Expected exactly one primary path")
	}
}

func TestCodePersistsRecord(t *testing.T) {
	source := &fakePathSource{
		paths:      []entities.HierarchyPath{path("A", "A10", "5001")},
		primaryTop: "A",
		version:    2,
	}
	resolver := NewResolver(source)

	res, err := resolver.Code(entities.DictionaryWhoDrug, "5001", "metformin tab", "", 0)
	if err != nil {
		t.Fatalf("Code failed: %v", err)
	}
	if source.inserted == nil {
		t.Fatal("Expected the record to be persisted")
	}
	if source.inserted.ID != res.Coding.ID {
		t.Error("Expected the persisted record and the response to match")
	}
}

func TestCodePropagatesEnumerationError(t *testing.T) {
	wantErr := errors.New("no active version")
	resolver := NewResolver(&fakePathSource{pathsErr: wantErr})

	if _, err := resolver.Code(entities.DictionaryMedDRA, "X", "v", "", 0); !errors.Is(err, wantErr) {
		t.Fatalf("Expected enumeration error to pass through, got %v", err)
	}
}

func TestCodePropagatesInsertError(t *testing.T) {
	resolver := NewResolver(&fakePathSource{
		paths:     []entities.HierarchyPath{path("SOC-1", "PT-1")},
		insertErr: errors.New("constraint violated"),
	})

	if _, err := resolver.Code(entities.DictionaryMedDRA, "PT-1", "v", "", 0); err == nil {
		t.Fatal("Expected insert error to propagate")
	}
}

func TestCodeNoPaths(t *testing.T) {
	resolver := NewResolver(&fakePathSource{})

	if _, err := resolver.Code(entities.DictionaryMedDRA, "X", "v", "", 0); err == nil {
		t.Fatal("Expected an error when no path exists")
	}
}
