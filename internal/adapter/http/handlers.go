package http

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/couchcryptid/envis/internal/adapter/csvfile"
	"github.com/couchcryptid/envis/internal/domain"
	"github.com/couchcryptid/envis/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const processedGeoJSON = "processed.geojson"

// sstDetails is served when no SST dataset is available to describe.
var sstDetails = domain.DatasetInfo{
	Variable:    "sst",
	LongName:    "Sea Surface Temperature",
	Units:       "°C",
	Source:      "NOAA OISST V2",
	Institution: "NOAA",
	Dimensions:  []string{"time", "lat", "lon"},
	Shape:       []int{24, 361, 720, 1},
}

type uploadResponse struct {
	Status   string   `json:"status"`
	Columns  []string `json:"columns"`
	Filename string   `json:"filename"`
}

type renderResponse struct {
	Status   string `json:"status"`
	Path     string `json:"path"`
	Variable string `json:"variable"`
	Features int    `json:"features"`
	Sampled  bool   `json:"sampled"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

// baseName reduces a client-supplied filename to a plain file name, or ""
// when nothing usable remains.
func baseName(name string) string {
	base := filepath.Base(filepath.Clean("/" + filepath.ToSlash(name)))
	if base == "/" || base == "." || base == ".." {
		return ""
	}
	return base
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	filename := baseName(header.Filename)
	if filename == "" {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}
	dst := filepath.Join(s.cfg.UploadDir, filename)

	n, err := saveUpload(dst, file)
	if err != nil {
		s.logger.Error("save upload failed", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
		return
	}
	s.metrics.UploadsReceived.Inc()
	s.metrics.UploadBytes.Observe(float64(n))

	columns, err := csvfile.ReadHeader(dst)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process file: %v", err))
		return
	}
	s.logger.Info("file uploaded", "filename", filename, "bytes", n, "columns", len(columns))

	sharedobs.WriteJSON(w, http.StatusOK, uploadResponse{
		Status:   "File uploaded",
		Columns:  columns,
		Filename: filename,
	})
}

func saveUpload(dst string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		return n, err
	}
	return n, f.Close()
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	filename := baseName(r.FormValue("filename"))
	variable := r.FormValue("variable")
	if filename == "" || variable == "" {
		writeError(w, http.StatusBadRequest, "Filename and variable required")
		return
	}

	res, err := s.svc.ConvertTable(r.Context(), pipeline.ConvertRequest{
		Path:      filepath.Join(s.cfg.UploadDir, filename),
		Value:     variable,
		Output:    filepath.Join(s.cfg.UploadDir, processedGeoJSON),
		MaxPoints: s.cfg.MaxPoints,
	})
	if err != nil {
		s.writeServiceError(w, err, "Processing failed")
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, renderResponse{
		Status:   "GeoJSON generated",
		Path:     "/uploads/" + processedGeoJSON,
		Variable: res.Variable,
		Features: res.Features,
		Sampled:  res.Sampled,
	})
}

// writeServiceError maps input errors to 400 and everything else to 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, prefix string) {
	var notFound *domain.InputNotFoundError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusBadRequest, "File not found")
	case domain.IsInputError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", prefix, err))
	}
}

func (s *Server) handleUploaded(w http.ResponseWriter, r *http.Request) {
	filename := baseName(r.PathValue("filename"))
	if filename == "" {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	s.serveFile(w, r, os.DirFS(s.cfg.UploadDir), filename, "")
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(r.PathValue("path"))
	if !fs.ValidPath(name) || name == "." {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	s.serveFile(w, r, os.DirFS(s.cfg.GeoJSONDir), name, "application/geo+json")
}

func (s *Server) handleImage(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveFile(w, r, os.DirFS(s.cfg.DataDir), file, "image/png")
	}
}

// serveFile writes name from fsys, or a JSON 404 when it is missing or a
// directory.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, fsys fs.FS, name, contentType string) {
	info, err := fs.Stat(fsys, name)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeFileFS(w, r, fsys, name)
}

func (s *Server) handleSSTDetails(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.cfg.SSTDatasetPath); err != nil {
		sharedobs.WriteJSON(w, http.StatusOK, sstDetails)
		return
	}
	info, err := s.svc.DescribeDataset(r.Context(), s.cfg.SSTDatasetPath, s.cfg.SSTVariable)
	if err != nil {
		s.writeServiceError(w, err, "Describe failed")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, info)
}
