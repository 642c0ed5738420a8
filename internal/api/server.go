package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"trend-radar/internal/model"
	"trend-radar/internal/parser"
	"trend-radar/internal/watch"
)

// Store 抽象存储接口。
type Store interface {
	FetchJobs(r *http.Request, keyword, source string) ([]model.Job, error)
	TopSkills(r *http.Request, keyword, source string, k int) ([]parser.SkillCount, error)
	Ping(r *http.Request) error
}

// Scheduler 抽象调度接口。
type Scheduler interface {
	RunOnce(r *http.Request) (int, error)
}

// WatchService 处理订阅创建。
type WatchService interface {
	Create(ctx context.Context, req watch.Request) (model.Watch, error)
}

// NewHandler 构造 HTTP 多路复用器。
func NewHandler(store Store, sched Scheduler, watches WatchService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		source := r.URL.Query().Get("source")

		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				if v > 100 {
					v = 100
				}
				limit = v
			}
		}

		jobs, err := store.FetchJobs(r, keyword, source)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if len(jobs) > limit {
			jobs = jobs[:limit]
		}

		w.Header().Set("X-Limit", strconv.Itoa(limit))
		writeJSON(w, http.StatusOK, jobs)
	})

	mux.HandleFunc("/api/skills/top", func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		source := r.URL.Query().Get("source")

		k := 10
		if q := r.URL.Query().Get("k"); q != "" {
			if v, err := strconv.Atoi(q); err == nil && v > 0 {
				if v > 50 {
					v = 50
				}
				k = v
			}
		}

		skills, err := store.TopSkills(r, keyword, source, k)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, skills)
	})

	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		inserted, err := sched.RunOnce(r)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
	})

	mux.HandleFunc("/api/watches", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if watches == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "watches disabled"})
			return
		}
		var req watch.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		created, err := watches.Create(r.Context(), req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "job trend api"})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
