package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"halawa/internal/export"
	"halawa/internal/models"
	"halawa/internal/service"
)

const maxBodyBytes = 1 << 20

type bookingRequest struct {
	Date       string `json:"date"`
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	PartySize  int    `json:"party_size"`
}

type selectionRequest struct {
	Date string `json:"date"`
}

type rejectionResponse struct {
	Error  string                 `json:"error"`
	Reason models.RejectionReason `json:"reason"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	info := s.deps.Bookings.EventInfo()
	writeJSON(w, http.StatusOK, map[string]any{
		"event":       info,
		"price_label": models.FormatPrice(info.Price, info.Currency),
	})
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	months := s.deps.Calendar.Months()
	if len(months) == 0 {
		writeError(w, http.StatusNotFound, "no event months")
		return
	}

	today := s.deps.Calendar.Today()
	year, month := today.Year(), today.Month()
	if !s.deps.Calendar.HasMonth(year, month) {
		year, month = months[0].Year, months[0].Month
	}

	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = v
	}
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			writeError(w, http.StatusBadRequest, "invalid month; expected 1-12")
			return
		}
		month = time.Month(v)
	}

	if !s.deps.Calendar.HasMonth(year, month) {
		writeError(w, http.StatusNotFound, "month outside the event period")
		return
	}

	var selected *time.Time
	if state, err := s.deps.Selection.Current(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("read selection for calendar")
	} else if state != nil {
		selected = &state.Date
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"calendar": s.deps.Calendar.Month(year, month, selected),
		"months":   months,
	})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		writeJSON(w, http.StatusOK, s.deps.Bookings.NoSelectionAvailability())
		return
	}

	key, err := models.ParseDateKey(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Bookings.Availability(key))
}

func (s *HTTPServer) handleValidatePhone(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	writeJSON(w, http.StatusOK, map[string]any{
		"phone": phone,
		"valid": models.IsValidPhone(phone),
	})
}

func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body bookingRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := models.BookingRequest{
		GuestName:  body.GuestName,
		GuestPhone: body.GuestPhone,
		PartySize:  body.PartySize,
	}

	if strings.TrimSpace(body.Date) != "" {
		date, err := s.parseDate(body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD or RFC 3339")
			return
		}
		req.Date = &date
	} else {
		state, err := s.deps.Selection.Current(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("read selection for submit")
		} else if state != nil {
			req.Date = &state.Date
		}
	}

	conf, err := s.deps.Bookings.Submit(ctx, req)
	if err != nil {
		if service.IsRejection(err) {
			writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
				Error:  err.Error(),
				Reason: models.ReasonOf(err),
			})
			return
		}
		s.logger.Error().Err(err).Msg("submit booking")
		writeError(w, http.StatusInternalServerError, "could not submit booking")
		return
	}

	if err := s.deps.Selection.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("clear selection after booking")
	}

	writeJSON(w, http.StatusCreated, conf)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		all := s.deps.Bookings.BookingsBetween("", "")
		writeJSON(w, http.StatusOK, map[string]any{
			"bookings": all,
			"total":    all.Count(),
		})
		return
	}

	key, err := models.ParseDateKey(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	list := s.deps.Bookings.Bookings(key)
	writeJSON(w, http.StatusOK, map[string]any{
		"date":         key,
		"bookings":     list,
		"total":        len(list),
		"availability": s.deps.Bookings.Availability(key),
	})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := optionalDateKey(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := optionalDateKey(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if from != "" && to != "" && to < from {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	bookings := s.deps.Bookings.BookingsBetween(from, to)
	info := s.deps.Bookings.EventInfo()

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings, s.deps.Calculator, info.Currency); err != nil {
		s.logger.Error().Err(err).Msg("export bookings")
		writeError(w, http.StatusInternalServerError, "could not export bookings")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(from, to)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	state, err := s.deps.Selection.Restore(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("restore selection")
		writeError(w, http.StatusInternalServerError, "could not read selection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": state})
}

func (s *HTTPServer) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var body selectionRequest
	if err := decodeJSON(w, r, &body); err != nil || strings.TrimSpace(body.Date) == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	date, err := s.parseDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD or RFC 3339")
		return
	}

	state, err := s.deps.Selection.Select(r.Context(), date)
	if err != nil {
		if service.IsRejection(err) {
			writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{Error: err.Error(), Reason: models.ReasonOf(err)})
			return
		}
		s.logger.Error().Err(err).Msg("store selection")
		writeError(w, http.StatusInternalServerError, "could not store selection")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": state})
}

func (s *HTTPServer) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Selection.Clear(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("clear selection")
		writeError(w, http.StatusInternalServerError, "could not clear selection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.deps.Preferences.Get(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("read preferences")
		writeError(w, http.StatusInternalServerError, "could not read preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *HTTPServer) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var body models.Preferences
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	prefs, err := s.deps.Preferences.Update(r.Context(), body)
	switch {
	case errors.Is(err, service.ErrInvalidLanguage), errors.Is(err, service.ErrInvalidTheme):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("update preferences")
		writeError(w, http.StatusInternalServerError, "could not update preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// parseDate accepts a calendar date in the event timezone or a full RFC 3339 timestamp.
func (s *HTTPServer) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(models.DateKeyLayout, raw, s.deps.Calendar.Location()); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func optionalDateKey(raw string) (models.DateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	return models.ParseDateKey(raw)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
