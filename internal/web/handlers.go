package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/juryclean/internal/core"
	"github.com/JonMunkholm/juryclean/internal/csvio"
	"github.com/JonMunkholm/juryclean/internal/logging"
	"github.com/JonMunkholm/juryclean/internal/workbook"
)

// uploadField is the repeated multipart field carrying the CSVs.
const uploadField = "files"

// CleanResponse is the JSON body of a successful clean.
type CleanResponse struct {
	RunID   string           `json:"run_id"`
	Columns []string         `json:"columns"`
	Rows    [][]string       `json:"rows"`
	Log     []core.LogRecord `json:"log"`
}

// handleClean cleans the uploaded CSVs and workbooks as one batch.
// With ?format=csv the cleaned table is returned as a CSV attachment.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)

	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("request body too large: %w", err), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyRequests) {
			w.Header().Set("Retry-After", "10")
		}
		respondError(w, r, err, statusFor(err))
		return
	}
	defer s.limiter.Release()

	inputs, err := s.uploadInputs(files)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	batch, err := s.cleaner.Run(ctx, inputs)
	if err != nil {
		respondBatchError(w, r, err, statusFor(err), batch)
		return
	}

	logging.WithFields(ctx, "run_id", batch.RunID).Info("clean complete",
		"files", len(files),
		"cleaned", batch.Cleaned(),
		"rows", len(batch.Rows()),
	)

	header, records := batch.Table()
	w.Header().Set("X-Run-ID", batch.RunID)

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="juror_cleaned_output.csv"`)
		if err := csvio.Write(w, header, records, s.write); err != nil {
			logging.FromContext(ctx).Error("csv write error", "run_id", batch.RunID, "error", err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, CleanResponse{
		RunID:   batch.RunID,
		Columns: header,
		Rows:    records,
		Log:     batch.Log(),
	})
}

// uploadInputs turns uploaded files into cleaner inputs. Workbooks are
// split into one input per data sheet up front; CSVs are read lazily.
func (s *Server) uploadInputs(files []*multipart.FileHeader) ([]core.Input, error) {
	var inputs []core.Input
	for _, fh := range files {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
			inputs = append(inputs, s.uploadInput(fh))
			continue
		}

		f, err := fh.Open()
		if err != nil {
			return nil, &core.ReadError{Source: fh.Filename, Err: err}
		}
		res, err := workbook.NewSplitter(s.logger).Split(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, res.Inputs()...)
	}
	return inputs, nil
}

// uploadInput defers reading an uploaded file until the cleaner opens it.
func (s *Server) uploadInput(fh *multipart.FileHeader) core.Input {
	return core.Input{
		Name: fh.Filename,
		Open: func() (*core.RawTable, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, &core.ReadError{Source: fh.Filename, Err: err}
			}
			defer f.Close()
			return csvio.Read(fh.Filename, f, s.read)
		},
	}
}

// handleRules returns the active rule set, as YAML with ?format=yaml.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
		if err := core.WriteRules(w, s.rules); err != nil {
			logging.FromContext(r.Context()).Error("rules encode error", "error", err)
		}
		return
	}
	writeJSON(w, r, http.StatusOK, s.rules)
}

// handleHealth reports liveness and slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, struct {
		Status  string `json:"status"`
		Limiter Status `json:"limiter"`
	}{
		Status:  "ok",
		Limiter: s.limiter.Status(),
	})
}
