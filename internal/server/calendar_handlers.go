package server

import (
	"errors"
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/calstore"
	"github.com/omriShneor/alfred_line/internal/ics"
)

const qrSize = 256

func (s *Server) handleCalendarDownload(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.loadCalendar(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// handleCalendarQR renders the download link as a PNG so it can be scanned
// from another device.
func (s *Server) handleCalendarQR(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.loadCalendar(w, r); !ok {
		return
	}

	url := fmt.Sprintf("%s/calendar/%s", s.publicBaseURL, r.PathValue("id"))
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("failed to render QR code", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) loadCalendar(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	id := r.PathValue("id")
	if !calstore.ValidID(id) {
		respondError(w, http.StatusNotFound, "calendar file not found")
		return nil, false
	}

	payload, err := s.calendars.Load(r.Context(), id)
	if errors.Is(err, calstore.ErrNotFound) {
		respondError(w, http.StatusNotFound, "calendar file not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load calendar file", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load calendar file")
		return nil, false
	}
	return payload, true
}
