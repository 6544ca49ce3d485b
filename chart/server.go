// Package chart serves an interactive time series chart of a collected dataset.
package chart

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
)

const DefaultAddr = ":8050"

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Cotações</title></head>
<body>
<form method="get" action="/">
<select name="currency" onchange="this.form.submit()">
{{- range .Currencies}}
<option value="{{.}}"{{if eq . $.Currency}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<select name="value" onchange="this.form.submit()">
{{- range .Values}}
<option value="{{.}}"{{if eq . $.Value}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
</form>
{{if .Currency}}<iframe src="{{.ChartURL}}" width="100%" height="560" frameborder="0"></iframe>{{end}}
</body>
</html>
`))

type (
	// Server renders the dataset it was built with.
	Server struct {
		dataset currency.Dataset
		router  chi.Router
	}

	pageData struct {
		Currencies []string
		Values     []string
		Currency   string
		Value      string
		ChartURL   string
	}
)

func NewServer(dataset currency.Dataset) *Server {
	s := &Server{dataset: dataset}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/chart", s.handleChart)
	r.Get("/api/series", s.handleSeries)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down chart server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting chart server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "chart: listen")
	}

	return nil
}

// selection resolves the query to a currency and a value column, applying defaults.
func (s *Server) selection(r *http.Request) (string, string) {
	name := r.URL.Query().Get("currency")
	if name == "" {
		if currencies := s.dataset.Currencies(); len(currencies) > 0 {
			name = currencies[0]
		}
	}

	value := r.URL.Query().Get("value")
	if value == "" {
		value = currency.ColumnBRLValue
	}

	return name, value
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name, value := s.selection(r)

	data := pageData{
		Currencies: s.dataset.Currencies(),
		Values:     currency.ValueColumns,
		Currency:   name,
		Value:      value,
		ChartURL:   "/chart?" + url.Values{"currency": {name}, "value": {value}}.Encode(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		zap.L().Error("render page", zap.Error(err))
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, value := s.selection(r)

	points, err := s.dataset.Series(name, value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Render(w, name, value, points); err != nil {
		zap.L().Error("render chart", zap.String("currency", name), zap.Error(err))
	}
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	name, value := s.selection(r)

	points, err := s.dataset.Series(name, value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"currency": name,
		"value":    value,
		"points":   points,
	})
}

// Title is the chart title for the named currency.
func Title(name string) string {
	return "Valor da " + name + " ao longo do tempo"
}

// Render writes a line chart of points, oldest first, as an HTML page.
func Render(w io.Writer, name, value string, points []currency.Point) error {
	dates := make([]string, 0, len(points))
	data := make([]opts.LineData, 0, len(points))

	for _, p := range points {
		dates = append(dates, p.Date)
		data = append(data, opts.LineData{Value: p.Value})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: Title(name), Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: Title(name)}),
		charts.WithXAxisOpts(opts.XAxis{Name: currency.ColumnDate}),
		charts.WithYAxisOpts(opts.YAxis{Name: value}),
	)
	line.SetXAxis(dates).AddSeries(name, data)

	return eris.Wrap(line.Render(w), "chart: render")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
