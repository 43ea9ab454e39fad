package server

import (
	"bytes"
	"context"
	"embed"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/json"
	"github.com/ajitpratap0/uniunit/pkg/logger"
	"github.com/ajitpratap0/uniunit/pkg/observability"
	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

//go:embed web
var webFS embed.FS

// customSystem is the system name logged for /api/unit-system requests,
// which carry their own unit map instead of a preset name.
const customSystem = "custom"

// CommonUnits is the unit list served by /api/ureg/units.
var CommonUnits = []string{
	"meter", "kilometer", "centimeter", "millimeter", "nanometer",
	"kilogram", "gram", "milligram", "microgram",
	"second", "minute", "hour", "day",
	"newton", "pascal", "joule", "watt",
	"volt", "ampere", "ohm",
	"kelvin", "degree_Celsius", "degree_Fahrenheit",
	"meter/second", "kilogram/meter**3", "newton/meter**2",
}

// Handler serves the JSON API and the embedded web page.
type Handler struct {
	registry     *units.Registry
	presets      *uniunit.Presets
	aliases      map[string]string
	maxBodyBytes int64
	logger       *zap.Logger
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}

	mux.HandleFunc("GET /{$}", h.index)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /health", h.health)

	mux.HandleFunc("GET /api/units/presets", h.listPresets)
	mux.HandleFunc("GET /api/units/presets/{name}", h.getPreset)
	mux.HandleFunc("POST /api/convert", h.convert)
	mux.HandleFunc("POST /api/unit-system", h.unitSystem)
	mux.HandleFunc("POST /api/quick-convert", h.quickConvert)
	mux.HandleFunc("GET /api/unit-info", h.unitInfo)
	mux.HandleFunc("GET /api/chinese-units", h.chineseUnits)
	mux.HandleFunc("GET /api/ureg/units", h.commonUnits)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type presetsResponse struct {
	Presets []string                     `json:"presets"`
	Details map[string]map[string]string `json:"details"`
}

type convertRequest struct {
	Value    *float64 `json:"value"`
	FromUnit string   `json:"from_unit"`
	ToUnit   string   `json:"to_unit"`
}

type convertResponse struct {
	Value    float64 `json:"value"`
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
	Result   float64 `json:"result"`
}

type unitSystemRequest struct {
	Value Scalar            `json:"value"`
	Units map[string]string `json:"units"`
}

type unitSystemResponse struct {
	Value  Scalar            `json:"value"`
	Units  map[string]string `json:"units"`
	Result string            `json:"result"`
}

type quickConvertRequest struct {
	Value      Scalar `json:"value"`
	FromSystem string `json:"from_system"`
	ToSystem   string `json:"to_system"`
}

type quickConvertResponse struct {
	Value      string `json:"value"`
	FromSystem string `json:"from_system"`
	ToSystem   string `json:"to_system"`
	Result     string `json:"result"`
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		h.fail(w, r, errors.Wrap(err, errors.ErrorTypeInternal, "failed to read index page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "uniUnit API is running"})
}

func (h *Handler) listPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, presetsResponse{
		Presets: h.presets.List(),
		Details: h.presets.Details(),
	})
}

func (h *Handler) getPreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	preset, ok := h.presets.Lookup(name)
	if !ok {
		h.fail(w, r, errors.Newf(errors.ErrorTypeNotFound, "Preset '%s' not found", name))
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Value == nil {
		h.fail(w, r, errors.New(errors.ErrorTypeValidation, "value is required"))
		return
	}

	_, span := observability.StartSpan(r.Context(), "convert",
		attribute.String("unit.from", req.FromUnit),
		attribute.String("unit.to", req.ToUnit),
	)
	result, err := uniunit.ConvertValue(h.registry, *req.Value, req.FromUnit, req.ToUnit)
	observability.EndSpan(span, err)
	if err != nil {
		h.conversionFailed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Value:    *req.Value,
		FromUnit: req.FromUnit,
		ToUnit:   req.ToUnit,
		Result:   result,
	})
}

func (h *Handler) unitSystem(w http.ResponseWriter, r *http.Request) {
	var req unitSystemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Value.IsSet() {
		h.fail(w, r, errors.New(errors.ErrorTypeValidation, "value is required"))
		return
	}
	if req.Units == nil {
		h.fail(w, r, errors.New(errors.ErrorTypeValidation, "units is required"))
		return
	}

	r = r.WithContext(context.WithValue(r.Context(), logger.SystemKey, customSystem))
	_, span := observability.StartSpan(r.Context(), "unit_system")
	result, err := h.unitSystemConvert(req)
	observability.EndSpan(span, err)
	if err != nil {
		h.conversionFailed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, unitSystemResponse{
		Value:  req.Value,
		Units:  req.Units,
		Result: uniunit.FormatValue(result),
	})
}

// unitSystemConvert converts a quantity expression, or a bare number taken as
// meters, with the request's own specification.
func (h *Handler) unitSystemConvert(req unitSystemRequest) (uniunit.Value, error) {
	var q units.Quantity
	if text, ok := req.Value.Text(); ok {
		parsed, err := h.registry.Parse(text)
		if err != nil {
			return uniunit.Value{}, err
		}
		q = parsed
	} else {
		n, _ := req.Value.Number()
		parsed, err := h.registry.NewQuantity(n, "meter")
		if err != nil {
			return uniunit.Value{}, err
		}
		q = parsed
	}
	return uniunit.ToUnit(h.registry, uniunit.FromQuantity(q), req.Units)
}

func (h *Handler) quickConvert(w http.ResponseWriter, r *http.Request) {
	var req quickConvertRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Value.IsSet() {
		h.fail(w, r, errors.New(errors.ErrorTypeValidation, "value is required"))
		return
	}

	r = r.WithContext(context.WithValue(r.Context(), logger.SystemKey, req.ToSystem))
	_, span := observability.StartSpan(r.Context(), "quick_convert",
		attribute.String("system.from", req.FromSystem),
		attribute.String("system.to", req.ToSystem),
	)
	var (
		result uniunit.Value
		err    error
	)
	if text, ok := req.Value.Text(); ok {
		result, err = uniunit.QuickConvertString(h.presets, text, req.FromSystem, req.ToSystem)
	} else {
		n, _ := req.Value.Number()
		result, err = uniunit.QuickConvert(h.presets, uniunit.Number(n), req.FromSystem, req.ToSystem)
	}
	observability.EndSpan(span, err)
	if err != nil {
		h.conversionFailed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quickConvertResponse{
		Value:      req.Value.String(),
		FromSystem: req.FromSystem,
		ToSystem:   req.ToSystem,
		Result:     uniunit.FormatValue(result),
	})
}

func (h *Handler) unitInfo(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if value == "" {
		h.fail(w, r, errors.New(errors.ErrorTypeValidation, "value query parameter is required"))
		return
	}

	q, err := h.registry.Parse(value)
	if err != nil {
		h.conversionFailed(w, r, err)
		return
	}
	info, err := uniunit.UnitInfo(h.registry, q)
	if err != nil {
		h.conversionFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) chineseUnits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]map[string]string{"chinese_units": h.aliases})
}

func (h *Handler) commonUnits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"units": CommonUnits})
}

// decode reads a JSON body of at most maxBodyBytes into v. It writes the
// error response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, errors.Newf(errors.ErrorTypeTooLarge, "request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		h.fail(w, r, errors.Wrap(err, errors.ErrorTypeValidation, "failed to read request body"))
		return false
	}
	if err := json.DecodeStrict(bytes.NewReader(body), v); err != nil {
		h.fail(w, r, errors.Wrap(err, errors.ErrorTypeValidation, "invalid request body"))
		return false
	}
	return true
}

// fail answers with {"detail": err} and the status errors.HTTPStatus picks
// for its type.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.respondError(w, r, errors.HTTPStatus(err), err)
}

// conversionFailed answers 400 whatever the error type, including unknown
// presets named in a request body.
func (h *Handler) conversionFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.respondError(w, r, http.StatusBadRequest, err)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log := logger.FromContext(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		log.Debug("request rejected",
			zap.String("path", r.URL.Path),
			zap.String("error_type", string(errors.TypeOf(err))),
			zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.MarshalToWriter(w, v)
}

// Scalar is a JSON value that may be either a string or a number.
type Scalar struct {
	text   string
	number float64
	isText bool
	set    bool
}

// TextScalar returns a Scalar holding s.
func TextScalar(s string) Scalar { return Scalar{text: s, isText: true, set: true} }

// NumberScalar returns a Scalar holding n.
func NumberScalar(n float64) Scalar { return Scalar{number: n, set: true} }

// IsSet reports whether a non-null value was decoded.
func (s Scalar) IsSet() bool { return s.set }

// Text returns the string form, if the value is a string.
func (s Scalar) Text() (string, bool) { return s.text, s.set && s.isText }

// Number returns the numeric form, if the value is a number.
func (s Scalar) Number() (float64, bool) { return s.number, s.set && !s.isText }

func (s Scalar) String() string {
	if s.isText {
		return s.text
	}
	return strconv.FormatFloat(s.number, 'g', -1, 64)
}

// UnmarshalJSON accepts a JSON string or number.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Scalar{}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = TextScalar(text)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New(errors.ErrorTypeValidation, "value must be a string or a number")
	}
	*s = NumberScalar(n)
	return nil
}

// MarshalJSON writes the value back in the form it was received.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	if s.isText {
		return json.Marshal(s.text)
	}
	return json.Marshal(s.number)
}
