package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ravenmed/terminology-api/coding"
	"github.com/ravenmed/terminology-api/config"
	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/handlers"
	"github.com/ravenmed/terminology-api/health"
	"github.com/ravenmed/terminology-api/importer"
	"github.com/ravenmed/terminology-api/logging"
	"github.com/ravenmed/terminology-api/search"
	"github.com/ravenmed/terminology-api/server"
	"github.com/ravenmed/terminology-api/store"
	"github.com/ravenmed/terminology-api/validation"
)

func TestMain(m *testing.M) {
	logging.InitLogger("")
	os.Exit(m.Run())
}

// newIntegrationServer wires the full dependency graph the way main does,
// over a fresh in-memory database.
func newIntegrationServer(t *testing.T) *server.Server {
	t.Helper()

	termStore, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { termStore.Close() })

	imp := importer.NewImporter(termStore, 0)
	handler := handlers.NewHTTPHandler(
		termStore,
		search.NewEngine(termStore, 0),
		coding.NewResolver(termStore),
		imp,
		validation.NewDataValidator(),
		health.NewHealthChecker(termStore, imp),
	)

	cfg := &config.Config{
		Port:           "8000",
		Address:        "127.0.0.1",
		Env:            "test",
		MaxRequestBody: 10 * 1024 * 1024,
		MaxHeaderSize:  1024 * 1024,
	}
	return server.NewServer(cfg, handler)
}

func doRequest(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:5000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func writeMeddraRelease(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()
	contents := map[string]string{
		"soc": "10000001$Cardiac disorders$\n" +
			"10000002$Nervous system disorders$\n",
		"hlgt": "20000001$Cardiac arrhythmias$\n",
		"hlt":  "30000001$Rate and rhythm disorders NEC$\n",
		"pt": "10042772$Tachycardia$$10000001$\n" +
			"10019211$Headache$$10000002$\n",
		"llt": "10049001$Heart racing$10042772$$$$$$$Y$\n" +
			"10049002$Racing heart$10042772$$$$$$$N$\n" +
			"10019216$Headache aggravated$10019211$$$$$$$Y$\n",
		"soc_hlgt": "10000001$20000001$\n",
		"hlgt_hlt": "20000001$30000001$\n",
		"hlt_pt":   "30000001$10042772$\n",
	}

	files := make(map[string]string, len(contents))
	for key, content := range contents {
		path := filepath.Join(dir, key+".asc")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", key, err)
		}
		files[key] = path
	}
	return files
}

// TestFullCodingWorkflow drives the complete operator and coder flow over
// the real router: import a release, watch progress, activate, search,
// browse, code a verbatim term and read the record back.
func TestFullCodingWorkflow(t *testing.T) {
	srv := newIntegrationServer(t)

	// 1. Import a MedDRA release.
	importBody, _ := json.Marshal(entities.ImportRequest{
		Dictionary: entities.DictionaryMedDRA,
		Label:      "MedDRA 27.0",
		ImportedBy: "ops",
		Files:      writeMeddraRelease(t),
	})
	rr := doRequest(t, srv, "POST", "/import", string(importBody))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("Import start: expected 202, got %d: %s", rr.Code, rr.Body.String())
	}
	var version entities.DictionaryVersion
	if err := json.Unmarshal(rr.Body.Bytes(), &version); err != nil {
		t.Fatalf("Failed to decode version: %v", err)
	}

	// 2. Poll progress until the background load finishes.
	deadline := time.Now().Add(10 * time.Second)
	for {
		rr = doRequest(t, srv, "GET", "/import/progress", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("Progress: expected 200, got %d", rr.Code)
		}
		var progress entities.ImportProgress
		if err := json.Unmarshal(rr.Body.Bytes(), &progress); err != nil {
			t.Fatalf("Failed to decode progress: %v", err)
		}
		if progress.Done {
			if progress.Error != "" {
				t.Fatalf("Import failed: %s", progress.Error)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Import did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// 3. Search answers nothing until a version is activated.
	rr = doRequest(t, srv, "GET", "/search/meddra?q=racing", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("Expected empty search before activation, got %d: %s", rr.Code, rr.Body.String())
	}

	// 4. Activate.
	rr = doRequest(t, srv, "POST", "/versions/1/activate", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Activate: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// 5. Search now ranks the loaded terms.
	rr = doRequest(t, srv, "GET", "/search/meddra?q=heart+racing", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Search: expected 200, got %d", rr.Code)
	}
	var results []entities.SearchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(results) != 1 || results[0].MatchTier != entities.MatchExact {
		t.Fatalf("Expected one exact match, got %+v", results)
	}
	lltCode := results[0].LeafCode

	// 6. Browse from the top down one step.
	rr = doRequest(t, srv, "GET", "/browse/meddra", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Browse: expected 200, got %d", rr.Code)
	}
	var nodes []entities.TermNode
	if err := json.Unmarshal(rr.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("Failed to decode nodes: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Name != "Cardiac disorders" {
		t.Fatalf("Expected the SOC list, got %+v", nodes)
	}

	// 7. Code the verbatim term against the found LLT.
	codingBody := `{"dictionary":"meddra","code":"` + lltCode + `","verbatim":"patient felt heart racing","coderId":"coder-1"}`
	rr = doRequest(t, srv, "POST", "/codings", codingBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateCoding: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resolution entities.CodingResolution
	if err := json.Unmarshal(rr.Body.Bytes(), &resolution); err != nil {
		t.Fatalf("Failed to decode resolution: %v", err)
	}
	if len(resolution.Coding.Path) != 5 {
		t.Fatalf("Expected a full 5-level path, got %+v", resolution.Coding.Path)
	}
	if resolution.Coding.Path[0].Code != "10000001" {
		t.Errorf("Expected the primary SOC on top, got %+v", resolution.Coding.Path[0])
	}

	// 8. The record is readable by id.
	rr = doRequest(t, srv, "GET", "/codings/"+resolution.Coding.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GetCoding: expected 200, got %d", rr.Code)
	}

	// 9. Health reflects the active dictionary.
	rr = doRequest(t, srv, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Health: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var healthResp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &healthResp); err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if healthResp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", healthResp["status"])
	}
}

// TestOrphanPTYieldsPartialPath checks that a PT outside every relationship
// file still codes with the path that exists.
func TestOrphanPTYieldsPartialPath(t *testing.T) {
	srv := newIntegrationServer(t)

	importBody, _ := json.Marshal(entities.ImportRequest{
		Dictionary: entities.DictionaryMedDRA,
		Label:      "MedDRA 27.0",
		Files:      writeMeddraRelease(t),
	})
	rr := doRequest(t, srv, "POST", "/import", string(importBody))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("Import start failed: %d", rr.Code)
	}
	deadline := time.Now().Add(10 * time.Second)
	for {
		rr = doRequest(t, srv, "GET", "/import/progress", "")
		var progress entities.ImportProgress
		if err := json.Unmarshal(rr.Body.Bytes(), &progress); err == nil && progress.Done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Import did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	doRequest(t, srv, "POST", "/versions/1/activate", "")

	// The Headache PT has no hlt_pt row in the fixture.
	rr = doRequest(t, srv, "POST", "/codings",
		`{"dictionary":"meddra","code":"10019216","verbatim":"bad headache"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for an orphan-PT coding, got %d: %s", rr.Code, rr.Body.String())
	}
	var resolution entities.CodingResolution
	if err := json.Unmarshal(rr.Body.Bytes(), &resolution); err != nil {
		t.Fatalf("Failed to decode resolution: %v", err)
	}
	if len(resolution.Paths) != 1 || len(resolution.Coding.Path) != 2 {
		t.Errorf("Expected one PT+LLT partial path, got %+v", resolution.Paths)
	}
}
