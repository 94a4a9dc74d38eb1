package tectonic

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// Server exposes the Coordinator's operations as a small JSON/bytes
// HTTP API:
//
//	PUT    /tenants/{tenant}             register a tenant
//	GET    /tenants                      list tenants
//	POST   /tenants/{tenant}/blobs       store the request body, returns the record
//	GET    /tenants/{tenant}/blobs       list blob records
//	GET    /tenants/{tenant}/blobs/{id}  raw blob bytes
//	DELETE /tenants/{tenant}/blobs/{id}  delete a blob
type Server struct {
	co *Coordinator
}

// NewServer returns a Server over co.
func NewServer(co *Coordinator) *Server {
	return &Server{co: co}
}

// Handler returns the routed http.Handler, wrapped with request
// logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /tenants/{tenant}", s.handleRegisterTenant)
	mux.HandleFunc("GET /tenants", s.handleListTenants)
	mux.HandleFunc("POST /tenants/{tenant}/blobs", s.handlePutBlob)
	mux.HandleFunc("GET /tenants/{tenant}/blobs", s.handleListBlobs)
	mux.HandleFunc("GET /tenants/{tenant}/blobs/{id}", s.handleGetBlob)
	mux.HandleFunc("DELETE /tenants/{tenant}/blobs/{id}", s.handleDeleteBlob)
	return LogRequest(mux)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: message})
}

// writeStoreError maps store errors onto HTTP statuses. InvalidTenant
// covers both unregistered tenants and ownership mismatches, so it maps
// to 403 rather than leaking which of the two occurred.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case IsInvalidTenant(err):
		writeError(w, "InvalidTenant", err.Error(), http.StatusForbidden)
	case IsBlobNotFound(err):
		writeError(w, "BlobNotFound", err.Error(), http.StatusNotFound)
	case IsChecksumMismatch(err):
		writeError(w, "ChecksumMismatch", err.Error(), http.StatusInternalServerError)
	case errors.Is(err, ErrInvalidBlobID):
		writeError(w, "InvalidBlobID", err.Error(), http.StatusBadRequest)
	default:
		slog.Error("Store operation failed", "error", err)
		writeError(w, "InternalError", "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response", "error", err)
	}
}

func (s *Server) handleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.PathValue("tenant"))
	if err := s.co.RegisterTenant(tenant); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.co.ListTenants()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if tenants == nil {
		tenants = []TenantID{}
	}
	writeJSON(w, http.StatusOK, map[string][]TenantID{"tenants": tenants})
}

func (s *Server) handlePutBlob(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.PathValue("tenant"))
	defer r.Body.Close()

	id, err := s.co.PutBlob(tenant, r.Body)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"blob_id": id.String()})
}

func (s *Server) handleListBlobs(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.PathValue("tenant"))

	records, skipped, err := s.co.ListBlobs(tenant)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []*BlobMetadata{}
	}
	w.Header().Set("X-Skipped-Records", strconv.Itoa(skipped))
	writeJSON(w, http.StatusOK, map[string][]*BlobMetadata{"blobs": records})
}

func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.PathValue("tenant"))
	id, err := ParseBlobID(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	reader, md, err := s.co.GetBlob(tenant, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(md.Size, 10))
	w.Header().Set("X-Checksum", md.Checksum)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("Stream blob", "tenant", tenant, "blob", id, "error", err)
	}
}

func (s *Server) handleDeleteBlob(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.PathValue("tenant"))
	id, err := ParseBlobID(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := s.co.DeleteBlob(tenant, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
