// Command mock-metrics stands in for the metrics backend during local development. It
// accepts pushgateway pushes and answers instant counter queries from what was pushed.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/proto"

	"github.com/shipsense/power-estimation/internal/metrics"
	"github.com/shipsense/power-estimation/internal/utils"
)

var jobMatcher = regexp.MustCompile(`job="([^"]*)"`)

type store struct {
	mu   sync.RWMutex
	jobs map[string]map[string]*dto.MetricFamily
}

func newStore() *store {
	return &store{jobs: make(map[string]map[string]*dto.MetricFamily)}
}

// push stores families under job. With replace set every earlier family of job is dropped.
func (s *store) push(job string, families map[string]*dto.MetricFamily, replace bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.jobs[job]
	if replace || current == nil {
		current = make(map[string]*dto.MetricFamily, len(families))
		s.jobs[job] = current
	}
	for name, mf := range families {
		current[name] = mf
	}
}

func (s *store) delete(job string) {
	s.mu.Lock()
	delete(s.jobs, job)
	s.mu.Unlock()
}

func (s *store) counter(job string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mf, ok := s.jobs[job][metrics.CounterMetric]
	if !ok || len(mf.GetMetric()) == 0 {
		return 0, false
	}
	return mf.GetMetric()[0].GetCounter().GetValue(), true
}

// families merges every job's families by name with a job label attached.
func (s *store) families() []*dto.MetricFamily {
	s.mu.RLock()
	defer s.mu.RUnlock()
	merged := make(map[string]*dto.MetricFamily)
	for job, families := range s.jobs {
		for name, mf := range families {
			out, ok := merged[name]
			if !ok {
				out = &dto.MetricFamily{Name: mf.Name, Help: mf.Help, Type: mf.Type}
				merged[name] = out
			}
			for _, m := range mf.GetMetric() {
				labelled := proto.Clone(m).(*dto.Metric)
				labelled.Label = append(labelled.Label, &dto.LabelPair{Name: proto.String("job"), Value: proto.String(job)})
				out.Metric = append(out.Metric, labelled)
			}
		}
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([]*dto.MetricFamily, 0, len(names))
	for _, name := range names {
		result = append(result, merged[name])
	}
	return result
}

func main() {
	addr := flag.String("addr", ":9091", "listen address")
	flag.Parse()

	logger := utils.NewLogger(os.Getenv("LOG_LEVEL"), false).With(slog.String("component", "mock-metrics"))
	st := newStore()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics/job/", func(w http.ResponseWriter, r *http.Request) {
		job := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/metrics/job/"), "/", 2)[0]
		if job == "" {
			http.Error(w, "job is required", http.StatusBadRequest)
			return
		}
		switch r.Method {
		case http.MethodPut, http.MethodPost:
			families, err := decodePush(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			st.push(job, families, r.Method == http.MethodPut)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			st.delete(job)
			w.WriteHeader(http.StatusAccepted)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, logger, queryResult(st, r.Form.Get("query")))
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		for _, mf := range st.families() {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				logger.Warn("render metrics", slog.Any("error", err))
				return
			}
		}
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           logRequests(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("listening", slog.String("address", *addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func decodePush(r *http.Request) (map[string]*dto.MetricFamily, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/vnd.google.protobuf") {
		return nil, errors.New("only delimited protobuf pushes are supported")
	}
	families := make(map[string]*dto.MetricFamily)
	reader := bufio.NewReader(r.Body)
	for {
		mf := &dto.MetricFamily{}
		if err := protodelim.UnmarshalFrom(reader, mf); err != nil {
			if errors.Is(err, io.EOF) {
				return families, nil
			}
			return nil, err
		}
		families[mf.GetName()] = mf
	}
}

func queryResult(st *store, query string) map[string]any {
	result := []map[string]any{}
	if strings.HasPrefix(strings.TrimSpace(query), metrics.CounterMetric) {
		job := ""
		if m := jobMatcher.FindStringSubmatch(query); m != nil {
			job = m[1]
		}
		if value, ok := st.counter(job); ok {
			now := float64(time.Now().UnixMilli()) / 1000
			result = append(result, map[string]any{
				"metric": map[string]string{"__name__": metrics.CounterMetric, "job": job},
				"value":  []any{now, strconv.FormatFloat(value, 'f', -1, 64)},
			})
		}
	}
	return map[string]any{
		"status": "success",
		"data": map[string]any{
			"resultType": "vector",
			"result":     result,
		},
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("encode error", slog.Any("error", err))
	}
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Debug("request", slog.String("method", r.Method), slog.String("path", r.URL.Path),
			slog.Int("status", rw.status), slog.Duration("duration", time.Since(start)))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
