package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/joshuahsieh24/enviroGovernment/internal/log"
	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
	"github.com/joshuahsieh24/enviroGovernment/pkg/pipeline"
	"github.com/joshuahsieh24/enviroGovernment/pkg/storage"
)

// Submitter accepts evidence runs for asynchronous processing.
type Submitter interface {
	Submit(input pipeline.RunInput) error
}

func StartServer(port string, store storage.Store, pool Submitter) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/v1/evidence", EvidenceHandler(pool))
	mux.HandleFunc("/v1/evidence/", EvidenceByIDHandler(store))
	mux.HandleFunc("/v1/gaps", GapsHandler(store))

	log.GetLogger().Infof("Starting ESG evidence server on :%s", port)
	return http.ListenAndServe(":"+port, mux)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ESG evidence server is running")
}

type submitRequest struct {
	FilePath   string         `json:"file_path"`
	SourceType string         `json:"source_type"`
	Metadata   models.JSONMap `json:"metadata"`
}

type submitResponse struct {
	EvidenceID string `json:"evidence_id"`
	Status     string `json:"status"`
}

// EvidenceHandler accepts new evidence submissions. The run itself is
// asynchronous; the handler answers with the assigned evidence ID.
func EvidenceHandler(pool Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.FilePath == "" {
			http.Error(w, "Missing 'file_path' field", http.StatusBadRequest)
			return
		}
		if !models.ValidSourceType(req.SourceType) {
			http.Error(w, fmt.Sprintf("Unsupported source type %q", req.SourceType), http.StatusBadRequest)
			return
		}

		input := pipeline.RunInput{
			EvidenceID: uuid.New().String(),
			FilePath:   req.FilePath,
			SourceType: req.SourceType,
			Metadata:   req.Metadata,
		}
		if err := pool.Submit(input); err != nil {
			log.GetLogger().Errorf("Failed to submit evidence: %v", err)
			http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(submitResponse{
			EvidenceID: input.EvidenceID,
			Status:     "accepted",
		})
	}
}

// EvidenceByIDHandler serves the current record snapshot and, with
// ?logs=true, the stage history alongside it.
func EvidenceByIDHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/v1/evidence/")
		if id == "" || strings.Contains(id, "/") {
			http.Error(w, "Invalid evidence ID", http.StatusBadRequest)
			return
		}

		record, err := store.GetRecord(id)
		if err == storage.ErrNotFound {
			http.Error(w, "Evidence not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.GetLogger().Errorf("Failed to get record %s: %v", id, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("logs") == "true" {
			logs, err := store.GetStageLogs(id)
			if err != nil {
				log.GetLogger().Errorf("Failed to get stage logs for %s: %v", id, err)
				http.Error(w, "Internal error", http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(struct {
				Record models.EvidenceRecord `json:"record"`
				Logs   []models.StageLog     `json:"logs"`
			}{Record: record, Logs: logs})
			return
		}
		_ = json.NewEncoder(w).Encode(record)
	}
}

// GapsHandler lists records that still carry outstanding gaps or
// expiring artifacts.
func GapsHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		records, err := store.ListRecordsWithFindings()
		if err != nil {
			log.GetLogger().Errorf("Failed to list records with findings: %v", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}
}
